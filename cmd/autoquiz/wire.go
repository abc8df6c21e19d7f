package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/GriffinCanCode/autoquiz/internal/config"
	"github.com/GriffinCanCode/autoquiz/internal/detector"
	"github.com/GriffinCanCode/autoquiz/internal/input"
	"github.com/GriffinCanCode/autoquiz/internal/input/robot"
	"github.com/GriffinCanCode/autoquiz/internal/ocr"
	"github.com/GriffinCanCode/autoquiz/internal/ocr/tesseract"
	"github.com/GriffinCanCode/autoquiz/internal/resilience"
	"github.com/GriffinCanCode/autoquiz/internal/screen"
	"github.com/GriffinCanCode/autoquiz/internal/solver"
	"github.com/GriffinCanCode/autoquiz/internal/translate"
)

type app struct {
	solver  *solver.Solver
	history *solver.History
	closers []io.Closer
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			slog.Warn("close failed", "error", err)
		}
	}
}

// build constructs every collaborator named by cfg. On error, whatever was
// already opened is closed.
func build(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{history: solver.NewHistory(solver.HistoryMaxEntries, solver.HistoryEventBuffer)}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	observe := resilience.WithObserver(a.history.ObserveBreaker)

	rec, err := newRecognizer(cfg, resilience.New("ocr", resilience.OCRConfig(), observe))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rec)

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cache, err := translate.NewCache(backend, cfg.CacheSize,
		translate.WithTimeout(cfg.TranslateTimeout),
		translate.WithBreaker(resilience.New("translate", resilience.TranslateConfig(), observe)))
	if err != nil {
		return nil, err
	}

	clicker, err := newClicker(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := clicker.(io.Closer); ok {
		a.closers = append(a.closers, c)
	}

	a.solver = solver.New(solver.Config{
		QuestionRegion: cfg.QuestionRegion,
		OptionsRegion:  cfg.OptionsRegion,
		Slots:          cfg.Slots,
		AcceptScore:    cfg.AcceptScore,
		ClickDelay:     cfg.ClickDelay,
		RetryDelay:     cfg.RetryDelay,
	}, solver.Deps{
		Capturer:   screen.NewCapturer(),
		Detector:   detector.New(newFingerprinter(cfg), cfg.StuckTimeout),
		Recognizer: rec,
		Translator: cache,
		Dispatcher: input.NewDispatcher(clicker, cfg.OptionsRegion, cfg.Slots),
		History:    a.history,
	})
	return a, nil
}

type recognizer interface {
	ocr.Recognizer
	io.Closer
}

// newRecognizer builds the configured OCR backend; only the sidecar uses the
// breaker, tesseract runs in-process.
func newRecognizer(cfg *config.Config, breaker *resilience.Breaker) (recognizer, error) {
	if cfg.OCRBackend == "grpc" {
		return ocr.Dial(cfg.OCRAddr, cfg.OCRLanguages, breaker)
	}
	return tesseract.New(cfg.OCRLanguages)
}

func newBackend(ctx context.Context, cfg *config.Config) (translate.Backend, error) {
	switch cfg.Translator {
	case "gemini":
		return translate.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "static":
		return translate.DefaultStatic, nil
	default:
		return translate.NewGoogle(&http.Client{Timeout: cfg.TranslateTimeout}, ""), nil
	}
}

func newClicker(cfg *config.Config) (input.Clicker, error) {
	if cfg.Clicker == "serial" {
		return input.OpenSerial(cfg.SerialPort, cfg.SerialBaud)
	}
	return robot.New(), nil
}

func newFingerprinter(cfg *config.Config) detector.Fingerprinter {
	if cfg.FingerprintMode == "phash" {
		return detector.NewPerceptual(cfg.MaxHashDistance)
	}
	return detector.NewGrid(cfg.NoiseThreshold)
}
