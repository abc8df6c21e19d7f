package input

import (
	"bufio"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/tarm/serial"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Serial drives an Arduino HID bridge: it writes a click command and waits
// for the bridge to acknowledge it.
type Serial struct {
	mu     sync.Mutex
	port   io.ReadWriteCloser
	reader *bufio.Reader
}

// OpenSerial opens the bridge on the named port.
func OpenSerial(name string, baud int) (*Serial, error) {
	if baud <= 0 {
		baud = DefaultSerialBaud
	}
	port, err := serial.OpenPort(&serial.Config{
		Name:        name,
		Baud:        baud,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: DefaultSerialReadTimeout,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "open serial port").WithMetadata("port", name)
	}
	slog.Info("serial clicker ready", "port", name, "baud", baud)
	return NewSerial(port), nil
}

// NewSerial wraps an already open port.
func NewSerial(port io.ReadWriteCloser) *Serial {
	return &Serial{port: port, reader: bufio.NewReader(port)}
}

// Click sends the click command and blocks until the bridge acknowledges.
func (s *Serial) Click(ctx context.Context, p image.Point) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.Cancelled, "click cancelled")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.port, ClickCommand, p.X, p.Y); err != nil {
		return apperrors.Wrap(err, apperrors.Unavailable, "write click command")
	}
	line, err := s.reader.ReadString('\n')
	if err != nil && line == "" {
		return apperrors.Wrap(err, apperrors.Unavailable, "read bridge response")
	}
	if resp := strings.TrimSpace(line); resp != AckResponse {
		return apperrors.Newf(apperrors.ClickFailed, "unexpected bridge response %q", resp)
	}
	return nil
}

// Close closes the port.
func (s *Serial) Close() error {
	return s.port.Close()
}
