package presentation

import (
	"errors"
	"time"

	"media-stage/internal/geometry"
	"media-stage/internal/mediatypes"
)

// Phase is the coarse presentation state.
type Phase string

const (
	PhaseClosed     Phase = "closed"
	PhasePresenting Phase = "presenting"
	PhasePresented  Phase = "presented"
	PhaseDismissing Phase = "dismissing"
)

var (
	// ErrAlreadyPresenting is returned by Present when a presentation is active.
	ErrAlreadyPresenting = errors.New("presentation already active")

	// ErrNotPresented is returned by Advance outside the Presented phase.
	ErrNotPresented = errors.New("no presented media")

	// ErrMediaNotInSet is returned when media is not part of allMedia.
	ErrMediaNotInSet = errors.New("media is not part of the presented set")

	// ErrStaleTransition is returned by Complete for a transition that is no
	// longer in flight.
	ErrStaleTransition = errors.New("transition is not in flight")
)

// Direction tells the renderer which way a transition runs.
type Direction string

const (
	DirectionPresent Direction = "present"
	DirectionDismiss Direction = "dismiss"
)

// Transition describes one hero animation. The coordinator only holds and
// hands it off; interpolation belongs to the renderer.
type Transition struct {
	ID           string        `json:"id"`
	Direction    Direction     `json:"direction"`
	AttachmentID string        `json:"attachmentId"`
	Origin       geometry.Rect `json:"origin"`
	Destination  geometry.Rect `json:"destination"`
	Duration     time.Duration `json:"duration"`
}

// State is a snapshot of the coordinator. Media and AllMedia are set in
// every phase except Closed. OriginFrame is set while presenting and
// TargetFrame while dismissing. Source is the feed item the presentation
// started from.
type State struct {
	Phase       Phase                   `json:"phase"`
	Source      string                  `json:"source,omitempty"`
	Media       *mediatypes.Attachment  `json:"media,omitempty"`
	AllMedia    []mediatypes.Attachment `json:"allMedia,omitempty"`
	OriginFrame *geometry.Rect          `json:"originFrame,omitempty"`
	TargetFrame *geometry.Rect          `json:"targetFrame,omitempty"`
	Transition  *Transition             `json:"transition,omitempty"`
}

// Active reports whether a presentation is in any phase but Closed.
func (s State) Active() bool {
	return s.Phase != PhaseClosed && s.Phase != ""
}

// Shows reports whether attachmentID is the media currently being presented.
func (s State) Shows(attachmentID string) bool {
	return s.Active() && s.Media != nil && s.Media.ID == attachmentID
}

// Index returns the position of the current media within AllMedia, or -1.
func (s State) Index() int {
	if s.Media == nil {
		return -1
	}
	return mediatypes.Index(s.AllMedia, s.Media.ID)
}

func (s State) clone() State {
	out := State{Phase: s.Phase, Source: s.Source}
	if s.Media != nil {
		m := *s.Media
		out.Media = &m
	}
	if s.AllMedia != nil {
		out.AllMedia = make([]mediatypes.Attachment, len(s.AllMedia))
		copy(out.AllMedia, s.AllMedia)
	}
	if s.OriginFrame != nil {
		r := *s.OriginFrame
		out.OriginFrame = &r
	}
	if s.TargetFrame != nil {
		r := *s.TargetFrame
		out.TargetFrame = &r
	}
	if s.Transition != nil {
		tr := *s.Transition
		out.Transition = &tr
	}
	return out
}
