package input

import "time"

// Serial bridge protocol
const (
	DefaultSerialBaud        = 9600
	DefaultSerialReadTimeout = 2 * time.Second

	// ClickCommand is formatted with the absolute x, y screen coordinates.
	ClickCommand = "click:%d,%d\n"
	// AckResponse is the line the bridge sends back once the click is done.
	AckResponse = "received"
)
