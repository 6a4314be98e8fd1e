package placeholder

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"image/png"

	"github.com/buckket/go-blurhash"

	"media-stage/internal/mediatypes"
)

// DefaultColor is the fill for attachments without a usable blurhash.
const DefaultColor = "#2a2a2e"

// MaxRenderSize caps both dimensions of a rendered preview.
const MaxRenderSize = 128

// ErrInvalidSize is returned for non-positive render dimensions.
var ErrInvalidSize = errors.New("invalid placeholder size")

// Color returns the hex fill colour for an attachment's pending cell.
func Color(att mediatypes.Attachment) string {
	if att.Blurhash == "" {
		return DefaultColor
	}
	c, err := Average(att.Blurhash)
	if err != nil {
		return DefaultColor
	}
	return Hex(c)
}

// Average decodes hash into a small image and averages its pixels.
func Average(hash string) (color.RGBA, error) {
	img, err := blurhash.Decode(hash, 4, 4, 1)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("decode blurhash: %w", err)
	}

	var r, g, b, n uint64
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			r += uint64(pr >> 8)
			g += uint64(pg >> 8)
			b += uint64(pb >> 8)
			n++
		}
	}
	if n == 0 {
		return color.RGBA{}, errors.New("empty blurhash image")
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(b / n), A: 0xff}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Render decodes hash to a PNG of at most MaxRenderSize on each side.
func Render(hash string, width, height int, punch int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidSize
	}
	if width > MaxRenderSize {
		width = MaxRenderSize
	}
	if height > MaxRenderSize {
		height = MaxRenderSize
	}
	if punch <= 0 {
		punch = 1
	}

	img, err := blurhash.Decode(hash, width, height, punch)
	if err != nil {
		return nil, fmt.Errorf("decode blurhash: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
