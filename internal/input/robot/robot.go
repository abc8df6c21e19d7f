// Package robot clicks through the OS input APIs via robotgo. It needs cgo
// and the platform input headers (XTest on Linux), so only the binary
// imports it.
package robot

import (
	"context"
	"image"

	"github.com/go-vgo/robotgo"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Clicker moves the pointer and presses the left button.
type Clicker struct {
	move  func(x, y int)
	click func()
}

func New() *Clicker {
	return &Clicker{
		move:  func(x, y int) { robotgo.Move(x, y) },
		click: func() { robotgo.Click("left", false) },
	}
}

// Click moves the pointer to p and presses the left button.
func (c *Clicker) Click(ctx context.Context, p image.Point) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.Cancelled, "click cancelled")
	}
	c.move(p.X, p.Y)
	c.click()
	return nil
}
