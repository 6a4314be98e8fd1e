// Package probe measures fetched media bytes once the external fetch/decode
// service has them, off the caller's goroutine.
//
// A probe sniffs the content type with mimetype, reads the pixel dimensions
// of still and animated images (honouring EXIF orientation for JPEG) and
// records the measured ratio as a snapshot so that the next layout pass for
// the attachment starts from measured data. A probe never changes the
// geometry of a plan that has already been committed: the result only
// carries a completion signal and, for the snapshot cache, a ratio.
//
// Pool runs probes on a fixed number of workers (see the workers package)
// and hands every Result to a single callback.
package probe
