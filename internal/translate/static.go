package translate

import (
	"context"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Static serves translations from a fixed table.
type Static map[string]string

// DefaultStatic covers the words the correction table produces, enough for a
// dry run.
var DefaultStatic = Static{
	"if": "如果",
	"it": "它",
	"at": "在",
}

// Translate looks word up in the table.
func (s Static) Translate(_ context.Context, word string) (string, error) {
	if v, ok := s[word]; ok {
		return v, nil
	}
	return "", apperrors.New(apperrors.TranslateFailed, "word not in table").WithMetadata("word", word)
}
