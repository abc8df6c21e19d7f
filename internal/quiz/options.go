package quiz

import (
	"math"
	"strings"
	"unicode"

	"github.com/GriffinCanCode/autoquiz/internal/ocr"
)

// Slots holds the option text per vertical band, index 0 on top.
type Slots []string

// Bin assigns runs containing Han characters to one of slots equal bands of
// a region height pixels tall. Runs are appended in recognition order.
func Bin(runs []ocr.Run, height, slots int) Slots {
	if slots < 1 {
		slots = DefaultSlots
	}
	out := make(Slots, slots)
	if height <= 0 {
		return out
	}
	band := float64(height) / float64(slots)

	for _, r := range runs {
		if !hasHan(r.Text) {
			continue
		}
		idx := int(math.Floor(r.MidY() / band))
		idx = max(0, min(idx, slots-1))
		out[idx] += stripSpace(r.Text)
	}
	return out
}

func hasHan(s string) bool {
	for _, r := range s {
		if isHan(r) {
			return true
		}
	}
	return false
}

func isHan(r rune) bool {
	return hanFirst <= r && r <= hanLast
}

// stripSpace drops whitespace some recognizers put between ideographs.
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
