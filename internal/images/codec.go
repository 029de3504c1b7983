package images

import (
	"bytes"
	"fmt"
	"image"
	"runtime"

	"github.com/disintegration/imaging"

	"level-thumbnails/pkg/apperrors"
)

const (
	ThumbnailWidth  = 1920
	ThumbnailHeight = 1080
)

// Resolution names accepted by the thumbnail endpoints.
type Resolution string

const (
	ResHigh   Resolution = "high"   // 1920x1080, original bytes
	ResMedium Resolution = "medium" // 1280x720
	ResSmall  Resolution = "small"  // 640x360
)

func ParseResolution(s string) (Resolution, bool) {
	switch Resolution(s) {
	case ResHigh, ResMedium, ResSmall:
		return Resolution(s), true
	default:
		return "", false
	}
}

func (r Resolution) Dimensions() (int, int) {
	switch r {
	case ResMedium:
		return 1280, 720
	case ResSmall:
		return 640, 360
	default:
		return ThumbnailWidth, ThumbnailHeight
	}
}

// Codec validates uploads and produces resized variants. Encoding is
// CPU-bound, so all work passes through a bounded semaphore to keep it
// from starving request handling.
type Codec struct {
	sem chan struct{}
}

func NewCodec() *Codec {
	n := runtime.NumCPU()
	if n < 1 {
		n = 1
	}
	return &Codec{sem: make(chan struct{}, n)}
}

// ValidateAndEncode decodes an upload, enforces the exact thumbnail
// dimensions and normalizes it to lossless PNG.
func (c *Codec) ValidateAndEncode(data []byte) ([]byte, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != ThumbnailWidth || bounds.Dy() != ThumbnailHeight {
		return nil, fmt.Errorf("%w: image must be exactly %dx%d, got %dx%d",
			apperrors.ErrInvalidImage, ThumbnailWidth, ThumbnailHeight, bounds.Dx(), bounds.Dy())
	}

	return encodePNG(img)
}

// Resize produces the bytes for a non-original resolution variant.
func (c *Codec) Resize(data []byte, res Resolution) ([]byte, error) {
	c.sem <- struct{}{}
	defer func() { <-c.sem }()

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode stored image: %w", err)
	}

	w, h := res.Dimensions()
	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	return encodePNG(resized)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
