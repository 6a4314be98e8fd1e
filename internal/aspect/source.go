package aspect

import "media-stage/internal/mediatypes"

// SnapshotSource supplies snapshots by attachment id. Implementations are
// read-only from the resolver's point of view.
type SnapshotSource interface {
	Snapshot(attachmentID string) (Snapshot, bool)
}

// Observer records which tier resolved each attachment.
type Observer interface {
	ObserveResolution(source Source)
}

// Resolver resolves whole attachment sets against a snapshot source.
type Resolver struct {
	snapshots SnapshotSource
	observer  Observer
}

// NewResolver creates a Resolver. Both arguments may be nil.
func NewResolver(snapshots SnapshotSource, observer Observer) *Resolver {
	return &Resolver{snapshots: snapshots, observer: observer}
}

// ResolveAll resolves every attachment exactly once and returns the ratios
// keyed by attachment id. Duplicate ids are resolved once.
func (r *Resolver) ResolveAll(attachments []mediatypes.Attachment) map[string]Ratio {
	ratios := make(map[string]Ratio, len(attachments))
	for _, att := range attachments {
		if _, done := ratios[att.ID]; done {
			continue
		}

		var snap *Snapshot
		if r.snapshots != nil {
			if s, ok := r.snapshots.Snapshot(att.ID); ok {
				snap = &s
			}
		}

		res := ResolveWithSource(att, snap)
		ratios[att.ID] = res.Ratio
		if r.observer != nil {
			r.observer.ObserveResolution(res.Source)
		}
	}
	return ratios
}
