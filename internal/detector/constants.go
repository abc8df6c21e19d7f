// Package detector decides when the on-screen question has changed
package detector

import "time"

// Change detection constants
const (
	// Side of the grayscale thumbnail used as the grid fingerprint
	GridSize = 4

	// Mean per-cell luma delta (0-255) at which the grid counts as changed.
	// Anti-aliasing and the card fade-in stay below it.
	DefaultNoiseThreshold = 3.0

	// Hamming distance above which two perceptual hashes count as changed
	DefaultMaxHashDistance = 4

	// Force a re-evaluation when nothing fresh happened for this long
	DefaultStuckTimeout = 5 * time.Second

	// Distance reported when fingerprints cannot be compared
	maxDistance = 255.0
)
