package robot

import (
	"context"
	"image"
	"testing"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/input"
)

var _ input.Clicker = (*Clicker)(nil)

func TestClick(t *testing.T) {
	var moved image.Point
	clicks := 0
	c := &Clicker{
		move:  func(x, y int) { moved = image.Point{X: x, Y: y} },
		click: func() { clicks++ },
	}
	if err := c.Click(context.Background(), image.Point{X: 10, Y: 20}); err != nil {
		t.Fatalf("Click() error: %v", err)
	}
	if moved != (image.Point{X: 10, Y: 20}) || clicks != 1 {
		t.Errorf("moved to %v with %d clicks", moved, clicks)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Click(ctx, image.Point{}); !apperrors.IsCode(err, apperrors.Cancelled) {
		t.Errorf("cancelled Click() = %v, want CANCELLED", err)
	}
	if clicks != 1 {
		t.Error("cancelled click should not press")
	}
}
