package solver

import "time"

// Loop pacing and recognition settings
const (
	DefaultClickDelay = 400 * time.Millisecond
	DefaultRetryDelay = 10 * time.Millisecond

	// Question text is small; upscaling before OCR helps short words.
	QuestionUpscale = 2
	QuestionMinSize = 2
	OptionsDecoder  = "greedy"

	// History configuration
	HistoryMaxEntries  = 100
	HistoryEventBuffer = 100
)
