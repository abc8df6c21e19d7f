// Package tesseract recognizes text in-process through libtesseract. It needs
// cgo with the tesseract and leptonica headers, so only the binary imports it.
package tesseract

import (
	"context"
	"image"
	"strings"

	"github.com/otiai10/gosseract/v2"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/ocr"
)

// Recognizer wraps one gosseract client. It is not safe for concurrent use.
type Recognizer struct {
	client    *gosseract.Client
	languages []string
}

// New creates a recognizer for the given tesseract languages
// (e.g. "eng", "chi_sim").
func New(languages []string) (*Recognizer, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage(languages...); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "set tesseract languages").
			WithMetadata("languages", strings.Join(languages, "+"))
	}
	return &Recognizer{client: client, languages: languages}, nil
}

// Recognize returns text-line runs, or paragraph runs when opts.Paragraph.
func (t *Recognizer) Recognize(ctx context.Context, img image.Image, opts ocr.Options) ([]ocr.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Cancelled, "recognize cancelled")
	}
	data, err := ocr.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	langs := t.languages
	if len(opts.Languages) > 0 {
		langs = opts.Languages
	}
	if err := t.client.SetLanguage(langs...); err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "set tesseract languages")
	}

	psm, level := gosseract.PSM_SPARSE_TEXT, gosseract.RIL_TEXTLINE
	if opts.Paragraph {
		psm, level = gosseract.PSM_AUTO, gosseract.RIL_PARA
	}
	if err := t.client.SetPageSegMode(psm); err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "set page segmentation mode")
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "load image")
	}
	boxes, err := t.client.GetBoundingBoxes(level)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "tesseract recognize")
	}
	return toRuns(boxes, opts.MinSize), nil
}

// Close releases the tesseract handle.
func (t *Recognizer) Close() error {
	return t.client.Close()
}

func toRuns(boxes []gosseract.BoundingBox, minSize int) []ocr.Run {
	runs := make([]ocr.Run, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" || ocr.TooSmall(b.Box, minSize) {
			continue
		}
		runs = append(runs, ocr.Run{
			Polygon:    ocr.RectPolygon(b.Box),
			Text:       text,
			Confidence: b.Confidence / 100,
		})
	}
	return runs
}
