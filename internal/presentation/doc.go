// Package presentation coordinates the hand-off of a tapped thumbnail to the
// fullscreen viewer.
//
// A Coordinator owns exactly one presentation state and moves it through:
//
//	Closed --Present--> Presenting --Complete--> Presented
//	Presented --Dismiss--> Dismissing --Complete--> Closed
//	Presented --Advance--> Presented (current media changes)
//	Presenting --Dismiss--> Closed (in-flight presentation cancelled)
//
// Each animated step produces a Transition descriptor holding the attachment
// id, the origin and destination rectangles and the duration. The renderer
// interpolates between them and calls Complete with the descriptor's id when
// the animation ends. Completions for a transition that is no longer current
// are rejected, so a cancelled presentation never leaks its frames.
//
// Present rejects a second presentation before looking at its arguments, and
// a rejected call changes nothing, including the viewer bounds passed with
// WithViewerBounds. WithSource names the feed item the media was tapped in;
// the return frame and the fullscreen aspect ratio are looked up for that
// item only.
//
// The coordinator never touches image bytes or decode state. The feed and the
// viewer observe it through the read-only Reader interface: the feed pauses
// autoplay for, and hides the thumbnail of, the media being shown.
package presentation
