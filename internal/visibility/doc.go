// Package visibility tracks how much of each rendered video-bearing view is
// on screen and raises edge-triggered visible/not-visible transitions.
//
// Views report their frame together with the viewport on every layout or
// scroll notification:
//
//	visible := tracker.Update(att.ID, frame, viewport)
//
// The visibility ratio is the intersection area divided by the view's area
// (0 for an empty view). A view is visible when the ratio is at least the
// threshold (DefaultThreshold, 30%). Subscribers are notified only when a
// view's visible flag flips, never on every scroll frame.
//
// Autoplay builds on the tracker: once scrolling settles it selects the single
// most-visible playable view and reports it when the selection changes.
package visibility
