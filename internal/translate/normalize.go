package translate

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// corrections maps common OCR misreads of short prompt words.
var corrections = map[string]string{
	"1f": "if",
	"lf": "if",
	"ll": "if",
	"1t": "it",
	"lt": "it",
	"at": "at",
}

var annotation = regexp.MustCompile(`\(.*?\)`)

// Key lower-cases word and applies the OCR correction table.
func Key(word string) string {
	w := strings.ToLower(strings.TrimSpace(word))
	if c, ok := corrections[w]; ok {
		return c
	}
	return w
}

// Normalize folds full-width forms, strips parenthesized annotations, keeps
// only Han characters and truncates to MaxRunes.
func Normalize(raw string) string {
	s := annotation.ReplaceAllString(width.Fold.String(raw), "")
	out := make([]rune, 0, MaxRunes)
	for _, r := range s {
		if r < hanFirst || r > hanLast {
			continue
		}
		out = append(out, r)
		if len(out) == MaxRunes {
			break
		}
	}
	return string(out)
}
