// Package screen captures fixed screen regions and prepares them for OCR
package screen

import (
	"context"
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Region is an axis-aligned rectangle on screen, in physical pixels.
type Region struct {
	X      int `mapstructure:"x"`
	Y      int `mapstructure:"y"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Rect returns the region as an image.Rectangle in screen coordinates.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Capturer grabs a snapshot of a screen region.
type Capturer interface {
	Capture(ctx context.Context, r Region) (image.Image, error)
}

// grabFunc implements platform-specific raw capture
type grabFunc func(image.Rectangle) (*image.RGBA, error)

// DisplayCapturer captures from the attached displays.
type DisplayCapturer struct {
	grab grabFunc
}

// NewCapturer creates a capturer backed by the OS screenshot APIs.
func NewCapturer() *DisplayCapturer {
	return &DisplayCapturer{grab: screenshot.CaptureRect}
}

// Capture returns the current pixels of r.
func (c *DisplayCapturer) Capture(ctx context.Context, r Region) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Cancelled, "capture cancelled")
	}
	if r.Width <= 0 || r.Height <= 0 {
		return nil, apperrors.New(apperrors.InvalidArgument, "empty capture region").
			WithMetadata("region", r.String())
	}
	img, err := c.grab(r.Rect())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CaptureFailed, "capture region").
			WithMetadata("region", r.String())
	}
	return img, nil
}
