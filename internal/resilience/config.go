package resilience

import "time"

// Breaker presets. The OCR sidecar sits on every iteration, so it trips
// sooner and recovers sooner than the translation endpoint.
const (
	OCRThreshold      = 3
	OCROpenFor        = 10 * time.Second
	OCRTrialSuccesses = 2

	TranslateThreshold      = 5
	TranslateOpenFor        = 30 * time.Second
	TranslateTrialSuccesses = 3
)

// Config holds breaker settings.
type Config struct {
	Threshold      int           // consecutive counted failures before opening
	OpenFor        time.Duration // wait before letting a trial call through
	TrialSuccesses int           // successes while half-open needed to close
	// Counts decides which errors count as failures; nil counts all.
	Counts func(error) bool
}

// OCRConfig is the preset for the OCR sidecar.
func OCRConfig() Config {
	return Config{
		Threshold:      OCRThreshold,
		OpenFor:        OCROpenFor,
		TrialSuccesses: OCRTrialSuccesses,
	}
}

// TranslateConfig is the preset for translation backends. Permanent errors
// (unknown word, unusable payload) say nothing about backend health and are
// not counted.
func TranslateConfig() Config {
	return Config{
		Threshold:      TranslateThreshold,
		OpenFor:        TranslateOpenFor,
		TrialSuccesses: TranslateTrialSuccesses,
		Counts:         IsRetryable,
	}
}

func (c Config) normalize() Config {
	c.Threshold = max(c.Threshold, 1)
	c.TrialSuccesses = max(c.TrialSuccesses, 1)
	if c.Counts == nil {
		c.Counts = func(error) bool { return true }
	}
	return c
}
