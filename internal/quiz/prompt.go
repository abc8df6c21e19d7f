// Package quiz extracts the prompt word and scores the answer options
package quiz

import (
	"strings"
)

// ExtractPrompt returns the first run of ASCII letters in text, lower-cased.
func ExtractPrompt(text string) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if isASCIILetter(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return strings.ToLower(text[start:i]), true
		}
	}
	if start >= 0 {
		return strings.ToLower(text[start:]), true
	}
	return "", false
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}
