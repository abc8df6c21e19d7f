// Package input turns an option index into a mouse click
package input

import (
	"context"
	"image"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/screen"
)

// Clicker performs a left click at an absolute screen point.
type Clicker interface {
	Click(ctx context.Context, p image.Point) error
}

// SlotCenter returns the centre of slot idx when region is split into slots
// equal horizontal bands.
func SlotCenter(region screen.Region, slots, idx int) image.Point {
	band := float64(region.Height) / float64(slots)
	return image.Point{
		X: region.X + region.Width/2,
		Y: region.Y + int((float64(idx)+0.5)*band),
	}
}

// Dispatcher clicks option slots of one region.
type Dispatcher struct {
	clicker Clicker
	region  screen.Region
	slots   int
}

func NewDispatcher(clicker Clicker, region screen.Region, slots int) *Dispatcher {
	return &Dispatcher{clicker: clicker, region: region, slots: slots}
}

// ClickSlot clicks the centre of slot idx and returns the point clicked.
func (d *Dispatcher) ClickSlot(ctx context.Context, idx int) (image.Point, error) {
	if idx < 0 || idx >= d.slots {
		return image.Point{}, apperrors.Newf(apperrors.InvalidArgument, "slot %d out of range [0,%d)", idx, d.slots)
	}
	p := SlotCenter(d.region, d.slots, idx)
	if err := d.clicker.Click(ctx, p); err != nil {
		return p, apperrors.Wrap(err, apperrors.ClickFailed, "click slot")
	}
	return p, nil
}
