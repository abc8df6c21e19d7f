package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

const geminiPrompt = `Translate the English word %q into Simplified Chinese.
Reply with the most common translation only, at most four characters, no pinyin, no punctuation.`

// Gemini asks a Gemini model for a one-word translation.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "create genai client")
	}
	return &Gemini{client: client, model: model}, nil
}

// Translate returns the model's answer for word.
func (g *Gemini) Translate(ctx context.Context, word string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(fmt.Sprintf(geminiPrompt, word)),
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(float32(0)),
			MaxOutputTokens: 16,
		},
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", apperrors.Wrap(err, apperrors.Timeout, "gemini generate")
		}
		return "", apperrors.Wrap(err, apperrors.Unavailable, "gemini generate").WithMetadata("model", g.model)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperrors.New(apperrors.TranslateFailed, "empty gemini response")
	}
	return text, nil
}
