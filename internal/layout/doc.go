// Package layout computes stable, non-reflowing display geometry for the
// media attachments of a post.
//
// A Planner turns an ordered attachment set, the resolved aspect ratios and
// the container width into a Plan: an ordered list of Cells with fixed
// frames. Plans are pure values. Planning the same inputs twice yields
// bit-identical geometry, and a plan never changes when image data finishes
// loading. Only a new attachment set, new ratios or a new container width
// produce a different plan.
//
// # Variants
//
//   - 0 attachments: empty plan
//   - 1 attachment: full-width cell, height = width / ratio capped at MaxSingleHeight
//   - 2-4 attachments: square cells of GridCellSize in two columns
//   - more than 4: the same grid, the 4th cell carries Overflow = count - 4
//
// Attachments without a ratio get a placeholder cell of the grid size.
//
// # Committing Plans
//
// Store keeps the committed plan per owner (usually a post id). Committing the
// same inputs returns the already committed plan unchanged. Committing a
// different attachment set supersedes the previous plan, and a plan computed
// for a ticket that has since been superseded is rejected with ErrSuperseded:
//
//	ticket := store.Begin(postID)
//	ratios := resolver.ResolveAll(attachments)
//	plan, err := store.Finish(ticket, attachments, ratios, width)
//	if errors.Is(err, layout.ErrSuperseded) {
//	    return // a newer render pass owns this post
//	}
package layout
