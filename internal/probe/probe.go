package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/tiff" // TIFF format support
	_ "golang.org/x/image/webp" // WebP format support

	"media-stage/internal/aspect"
	"media-stage/internal/logging"
	"media-stage/internal/mediatypes"
	"media-stage/internal/snapshots"
)

// ErrUnsupported is returned for content that cannot be measured.
var ErrUnsupported = errors.New("unsupported media content")

// ErrEmpty is returned when there are no bytes to probe.
var ErrEmpty = errors.New("no media bytes")

const octetStream = "application/octet-stream"

// Status is the terminal content state of a cell after a probe.
type Status string

const (
	StatusLoaded Status = "loaded"
	StatusFailed Status = "failed"
)

// Result is the outcome of probing one attachment.
type Result struct {
	AttachmentID string          `json:"attachmentId"`
	Status       Status          `json:"status"`
	Kind         mediatypes.Kind `json:"kind"`
	Mime         string          `json:"mime"`
	Width        int             `json:"width,omitempty"`
	Height       int             `json:"height,omitempty"`
	Ratio        aspect.Ratio    `json:"ratio,omitempty"`
	Err          error           `json:"-"`
}

// Recorder persists measured snapshots.
type Recorder interface {
	Record(ctx context.Context, entry snapshots.Entry) error
}

// Observer records probe activity.
type Observer interface {
	ObserveProbe(kind mediatypes.Kind, durationSeconds float64, err error)
}

// Prober measures media bytes.
type Prober struct {
	recorder Recorder
	observer Observer
}

// NewProber creates a Prober. recorder may be nil to skip snapshot recording.
func NewProber(recorder Recorder, observer Observer) *Prober {
	return &Prober{recorder: recorder, observer: observer}
}

// Probe sniffs and measures the job's bytes. Videos are recognised but not
// measured; they load successfully without a ratio.
func (p *Prober) Probe(ctx context.Context, job Job) Result {
	attachmentID := job.AttachmentID
	start := time.Now()
	res := p.measure(job)

	if res.Err == nil && res.Ratio.Valid() && p.recorder != nil {
		entry := snapshots.Entry{
			AttachmentID: attachmentID,
			Ratio:        res.Ratio,
			Width:        res.Width,
			Height:       res.Height,
			Source:       "probe",
		}
		if err := p.recorder.Record(ctx, entry); err != nil {
			// The cell still loaded; only the snapshot is lost.
			logging.Warn("Failed to record snapshot for %s: %v", attachmentID, err)
		}
	}

	if p.observer != nil {
		p.observer.ObserveProbe(res.Kind, time.Since(start).Seconds(), res.Err)
	}
	return res
}

func (p *Prober) measure(job Job) Result {
	attachmentID, data := job.AttachmentID, job.Data
	res := Result{AttachmentID: attachmentID, Kind: mediatypes.KindUnknown}
	if len(data) == 0 {
		return failed(res, ErrEmpty)
	}

	mt := mimetype.Detect(data)
	res.Mime = mt.String()
	if mt.Is(octetStream) && job.URL != "" {
		res.Mime = mediatypes.GetMimeType(mediatypes.ExtensionFromURL(job.URL))
	}
	res.Kind = mediatypes.KindFromMime(res.Mime)

	switch res.Kind {
	case mediatypes.KindVideo:
		res.Status = StatusLoaded
		return res
	case mediatypes.KindImage, mediatypes.KindAnimatedImage:
	default:
		return failed(res, fmt.Errorf("%s: %w", res.Mime, ErrUnsupported))
	}

	width, height, err := dimensions(data, mt.Is("image/jpeg"))
	if err != nil {
		return failed(res, fmt.Errorf("measure %s: %w", attachmentID, err))
	}

	res.Status = StatusLoaded
	res.Width = width
	res.Height = height
	res.Ratio = aspect.FromSize(float64(width), float64(height))
	logging.Debug("Probed %s: %s %dx%d", attachmentID, res.Mime, width, height)
	return res
}

// dimensions returns displayed dimensions. JPEG is fully decoded so EXIF
// orientation can swap width and height; other formats only read the header.
func dimensions(data []byte, jpeg bool) (int, int, error) {
	if jpeg {
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return 0, 0, err
		}
		b := img.Bounds()
		return b.Dx(), b.Dy(), nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return 0, 0, ErrUnsupported
		}
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

func failed(res Result, err error) Result {
	res.Status = StatusFailed
	res.Err = err
	return res
}
