// Package mediatypes provides the shared attachment model and media kind
// classification used across media-stage.
//
// This package is a dependency-free foundation that every other package can
// import without creating import cycles. It contains the immutable Attachment
// description, the Kind enum and pure helpers that classify URLs and MIME types.
//
// # Kinds
//
//	mediatypes.KindImage         // Still images (jpg, png, webp, ...)
//	mediatypes.KindVideo         // Videos with playback controls (mp4, webm, ...)
//	mediatypes.KindAnimatedImage // Looping animations (gif, gifv)
//	mediatypes.KindUnknown       // Unrecognized
//
// Video and animated attachments are "playable" and take part in autoplay
// decisions:
//
//	if mediatypes.ResolveKind(att).IsPlayable() {
//	    tracker.Update(att.ID, frame, viewport)
//	}
//
// # URL Classification
//
// When a server omits the attachment type, KindFromURL falls back to the file
// extension of the URL path; query strings and fragments are ignored:
//
//	mediatypes.KindFromURL("https://cdn.example/a/clip.MP4?sig=1") // KindVideo
package mediatypes
