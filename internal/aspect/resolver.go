package aspect

import (
	"math"

	"media-stage/internal/mediatypes"
)

// DefaultRatio is used when no source yields a usable ratio (3:2).
const DefaultRatio Ratio = 1.5

// Ratio is a width/height aspect ratio. A resolved Ratio is always > 0.
type Ratio float64

// Valid reports whether r is a finite, positive ratio.
func (r Ratio) Valid() bool {
	f := float64(r)
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}

// FromSize returns width/height, or 0 when either dimension is not positive.
func FromSize(width, height float64) Ratio {
	if !(width > 0) || !(height > 0) {
		return 0
	}
	return Ratio(width / height)
}

// Snapshot is a previously measured ratio for an attachment, supplied by an
// external cache. It is read-only input to the resolver.
type Snapshot struct {
	AttachmentID string `json:"attachmentId"`
	Ratio        Ratio  `json:"ratio"`
}

// Source identifies which precedence tier produced a resolved ratio.
type Source string

const (
	// SourceSnapshot means a cached snapshot was used.
	SourceSnapshot Source = "snapshot"
	// SourceDeclared means the attachment's declared dimensions were used.
	SourceDeclared Source = "declared"
	// SourceURL means dimensions were inferred from the URL.
	SourceURL Source = "url"
	// SourceDefault means nothing was usable and DefaultRatio was returned.
	SourceDefault Source = "default"
)

// Resolution is a resolved ratio together with the tier that produced it.
type Resolution struct {
	Ratio  Ratio
	Source Source
}

// Resolve returns the authoritative ratio for att. snapshot may be nil.
func Resolve(att mediatypes.Attachment, snapshot *Snapshot) Ratio {
	return ResolveWithSource(att, snapshot).Ratio
}

// ResolveWithSource is Resolve, also reporting which tier won.
func ResolveWithSource(att mediatypes.Attachment, snapshot *Snapshot) Resolution {
	if snapshot != nil && snapshot.Ratio.Valid() {
		return Resolution{Ratio: snapshot.Ratio, Source: SourceSnapshot}
	}

	if att.HasDeclaredSize() {
		if r := FromSize(float64(att.Width), float64(att.Height)); r.Valid() {
			return Resolution{Ratio: r, Source: SourceDeclared}
		}
	}

	for _, u := range []string{att.URL, att.PreviewURL} {
		if u == "" {
			continue
		}
		if w, h, ok := DimensionsFromURL(u); ok {
			if r := FromSize(float64(w), float64(h)); r.Valid() {
				return Resolution{Ratio: r, Source: SourceURL}
			}
		}
	}

	return Resolution{Ratio: DefaultRatio, Source: SourceDefault}
}
