package mediatypes

import (
	"net/url"
	"path"
	"strings"
)

// Kind represents the type of a media attachment.
type Kind string

const (
	// KindImage is a still image.
	KindImage Kind = "image"
	// KindVideo is a video with its own playback controls.
	KindVideo Kind = "video"
	// KindAnimatedImage is a looping, silent animation (GIF or gifv-style video).
	KindAnimatedImage Kind = "animated-image"
	// KindUnknown is an attachment whose kind could not be determined.
	KindUnknown Kind = "unknown"
)

// IsPlayable reports whether attachments of this kind drive autoplay.
func (k Kind) IsPlayable() bool {
	return k == KindVideo || k == KindAnimatedImage
}

// Attachment is an immutable description of one media item belonging to a post.
// Width and Height are the dimensions declared by the origin server and are
// zero when the server did not send them.
type Attachment struct {
	ID         string `json:"id"`
	Kind       Kind   `json:"kind"`
	URL        string `json:"url"`
	PreviewURL string `json:"previewUrl,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	AltText    string `json:"altText,omitempty"`
	Blurhash   string `json:"blurhash,omitempty"`
}

// HasDeclaredSize reports whether both declared dimensions are usable.
func (a Attachment) HasDeclaredSize() bool {
	return a.Width > 0 && a.Height > 0
}

// Index returns the position of the attachment with the given id, or -1.
func Index(attachments []Attachment, id string) int {
	for i, a := range attachments {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// ImageExtensions maps file extensions to whether they are still image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".heic": true,
	".heif": true,
	".avif": true,
}

// AnimatedExtensions maps file extensions to whether they are animated image formats.
var AnimatedExtensions = map[string]bool{
	".gif":  true,
	".gifv": true,
	".apng": true,
}

// VideoExtensions maps file extensions to whether they are video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".m4v":  true,
	".mov":  true,
	".webm": true,
	".mkv":  true,
	".m3u8": true,
	".3gp":  true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".tiff": "image/tiff",
	".tif":  "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	".apng": "image/apng",

	".gifv": "video/mp4",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".m3u8": "application/vnd.apple.mpegurl",
	".3gp":  "video/3gpp",
}

// GetKind returns the Kind for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".jpg").
// Returns KindUnknown if the extension is not recognized.
func GetKind(ext string) Kind {
	if AnimatedExtensions[ext] {
		return KindAnimatedImage
	}
	if ImageExtensions[ext] {
		return KindImage
	}
	if VideoExtensions[ext] {
		return KindVideo
	}
	return KindUnknown
}

// KindFromMime classifies a MIME type, such as one sniffed from fetched bytes.
func KindFromMime(mime string) Kind {
	mime = strings.ToLower(mime)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch {
	case mime == "image/gif" || mime == "image/apng" || mime == "image/vnd.mozilla.apng":
		return KindAnimatedImage
	case strings.HasPrefix(mime, "image/"):
		return KindImage
	case strings.HasPrefix(mime, "video/"):
		return KindVideo
	default:
		return KindUnknown
	}
}

// GetMimeType returns the MIME type for a given file extension.
// Returns "application/octet-stream" if the extension is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ExtensionFromURL returns the lowercase extension of the last path segment
// of rawURL, ignoring any query string or fragment.
func ExtensionFromURL(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	return strings.ToLower(path.Ext(p))
}

// KindFromURL infers the attachment kind from the URL's file extension.
func KindFromURL(rawURL string) Kind {
	return GetKind(ExtensionFromURL(rawURL))
}

// ResolveKind returns the declared kind of a, falling back to URL inference
// when the declared kind is empty or unknown.
func ResolveKind(a Attachment) Kind {
	if a.Kind != "" && a.Kind != KindUnknown {
		return a.Kind
	}
	return KindFromURL(a.URL)
}
