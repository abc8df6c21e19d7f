// Package ocr turns region images into recognized text runs
package ocr

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strings"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Run is one recognized text fragment.
type Run struct {
	// Polygon is the bounding polygon, clockwise from top-left, relative to
	// the recognized image.
	Polygon    []image.Point
	Text       string
	Confidence float64
}

// MidY returns the vertical midpoint of the run's box.
func (r Run) MidY() float64 {
	if len(r.Polygon) >= 3 {
		return float64(r.Polygon[0].Y+r.Polygon[2].Y) / 2
	}
	if len(r.Polygon) == 0 {
		return 0
	}
	minY, maxY := r.Polygon[0].Y, r.Polygon[0].Y
	for _, p := range r.Polygon[1:] {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}
	return float64(minY+maxY) / 2
}

// Options tune a single recognition call.
type Options struct {
	// Languages overrides the recognizer's default languages when set.
	Languages []string
	// MinSize drops runs whose box is smaller than this in both dimensions.
	MinSize int
	// Paragraph merges lines into paragraphs.
	Paragraph bool
	// Decoder names the decoding strategy ("greedy", "beamsearch"); backends
	// without a choice ignore it.
	Decoder string
}

// Recognizer extracts text runs from an image.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, opts Options) ([]Run, error)
}

// Join concatenates run texts in recognition order.
func Join(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// RectPolygon returns the four corners of r, clockwise from top-left.
func RectPolygon(r image.Rectangle) []image.Point {
	return []image.Point{
		{X: r.Min.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Min.Y},
		{X: r.Max.X, Y: r.Max.Y},
		{X: r.Min.X, Y: r.Max.Y},
	}
}

// EncodePNG encodes img for backends that take file bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, apperrors.Wrap(err, apperrors.InvalidArgument, "encode png")
	}
	return buf.Bytes(), nil
}

// TooSmall reports whether r is under minSize in both dimensions.
func TooSmall(r image.Rectangle, minSize int) bool {
	return r.Dx() < minSize && r.Dy() < minSize
}
