// Package solver runs the capture, recognize, translate, score and click loop
package solver

import (
	"context"
	"image"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/GriffinCanCode/autoquiz/internal/detector"
	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/ocr"
	"github.com/GriffinCanCode/autoquiz/internal/quiz"
	"github.com/GriffinCanCode/autoquiz/internal/screen"
	"github.com/GriffinCanCode/autoquiz/internal/trace"
)

// Translator returns the normalized translation of a word, "" when unknown.
type Translator interface {
	Translate(ctx context.Context, word string) string
}

// Dispatcher clicks an option slot.
type Dispatcher interface {
	ClickSlot(ctx context.Context, idx int) (image.Point, error)
}

// Outcome is the result of one Step. Err carries the skip reason code when
// nothing was clicked.
type Outcome struct {
	Clicked  bool
	Forced   bool
	Word     string
	Target   string
	Slot     int
	Score    int
	Point    image.Point
	Err      error
	Duration time.Duration
}

// Config holds the loop settings.
type Config struct {
	QuestionRegion screen.Region
	OptionsRegion  screen.Region
	Slots          int
	AcceptScore    int
	ClickDelay     time.Duration
	RetryDelay     time.Duration
}

// Deps are the collaborators a Solver drives.
type Deps struct {
	Capturer   screen.Capturer
	Detector   *detector.Detector
	Recognizer ocr.Recognizer
	Translator Translator
	Dispatcher Dispatcher
	// History is optional.
	History *History
}

// Solver owns the answer loop. It is not safe for concurrent Step calls.
type Solver struct {
	cfg  Config
	deps Deps
	now  func() time.Time
}

// New creates a solver; zero delays and slot counts take the defaults.
func New(cfg Config, deps Deps) *Solver {
	if cfg.Slots < 1 {
		cfg.Slots = quiz.DefaultSlots
	}
	if cfg.ClickDelay <= 0 {
		cfg.ClickDelay = DefaultClickDelay
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Solver{cfg: cfg, deps: deps, now: time.Now}
}

// Run steps until ctx is cancelled, pacing iterations by ClickDelay after a
// click and RetryDelay otherwise. It returns nil on cancellation.
func (s *Solver) Run(ctx context.Context) error {
	slog.Info("solver started",
		"question_region", s.cfg.QuestionRegion.String(),
		"options_region", s.cfg.OptionsRegion.String(),
		"slots", s.cfg.Slots)

	st := detector.NewState(s.now())
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		if ctx.Err() != nil {
			slog.Info("solver stopped")
			return nil
		}

		out, next := s.Step(ctx, st)
		st = next

		delay := s.cfg.RetryDelay
		if out.Clicked {
			delay = s.cfg.ClickDelay
		}
		timer.Reset(delay)
		select {
		case <-ctx.Done():
			slog.Info("solver stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Step runs one iteration against st and returns the outcome and the state
// for the next iteration. It never panics; a panic becomes an INTERNAL
// outcome and keeps whatever state the detector had already produced.
func (s *Solver) Step(ctx context.Context, st detector.State) (out Outcome, next detector.State) {
	start := s.now()
	ctx, span := trace.StartSpan(ctx, "solver.step")
	log := trace.Logger(ctx)
	next = st

	defer func() {
		if r := recover(); r != nil {
			log.Error("step panicked", "panic", r, "stack", string(debug.Stack()))
			out.Clicked = false
			out.Err = apperrors.Newf(apperrors.Internal, "panic: %v", r)
		}
		out.Duration = s.now().Sub(start)
		span.SetAttr("forced", out.Forced)
		span.End()
		s.report(log, span, out)
	}()

	s.step(ctx, start, &out, &next)
	return out, next
}

// step fills out and advances next as each stage completes.
func (s *Solver) step(ctx context.Context, now time.Time, out *Outcome, next *detector.State) {
	qimg, err := s.deps.Capturer.Capture(ctx, s.cfg.QuestionRegion)
	if err != nil {
		out.Err = apperrors.Wrap(err, apperrors.CaptureFailed, "capture question")
		return
	}

	dec, evaluated, err := s.deps.Detector.Evaluate(qimg, *next, now)
	if err != nil {
		out.Err = apperrors.Wrap(err, apperrors.CaptureFailed, "fingerprint question")
		return
	}
	*next = evaluated
	out.Forced = dec.Forced
	if !dec.ShouldProcess {
		out.Err = apperrors.New(apperrors.NoChange, "question unchanged")
		return
	}

	word, err := s.readPrompt(ctx, qimg)
	if err != nil {
		out.Err = err
		return
	}
	out.Word = word

	target := s.deps.Translator.Translate(ctx, word)
	if target == "" {
		out.Err = apperrors.New(apperrors.NoTranslation, "no translation").WithMetadata("word", word)
		return
	}
	out.Target = target

	slots, err := s.readOptions(ctx)
	if err != nil {
		out.Err = err
		return
	}

	idx, score, ok := quiz.Best(slots, target, s.cfg.AcceptScore)
	out.Score = score
	if !ok {
		out.Err = apperrors.New(apperrors.NoMatch, "no option matches").WithMetadata("target", target)
		return
	}
	out.Slot = idx

	p, err := s.deps.Dispatcher.ClickSlot(ctx, idx)
	out.Point = p
	if err != nil {
		out.Err = apperrors.Wrap(err, apperrors.ClickFailed, "click answer")
		return
	}
	out.Clicked = true
	*next = next.Fresh(s.now())
}

func (s *Solver) readPrompt(ctx context.Context, qimg image.Image) (string, error) {
	up := screen.Upscale(screen.Grayscale(qimg), QuestionUpscale)
	runs, err := s.deps.Recognizer.Recognize(ctx, up, ocr.Options{MinSize: QuestionMinSize, Paragraph: false})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.OCRFailed, "recognize question")
	}
	word, ok := quiz.ExtractPrompt(ocr.Join(runs))
	if !ok {
		return "", apperrors.New(apperrors.NoPrompt, "no english word in question")
	}
	return word, nil
}

func (s *Solver) readOptions(ctx context.Context) (quiz.Slots, error) {
	img, err := s.deps.Capturer.Capture(ctx, s.cfg.OptionsRegion)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CaptureFailed, "capture options")
	}
	runs, err := s.deps.Recognizer.Recognize(ctx, screen.Grayscale(img), ocr.Options{Decoder: OptionsDecoder})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.OCRFailed, "recognize options")
	}
	return quiz.Bin(runs, s.cfg.OptionsRegion.Height, s.cfg.Slots), nil
}

func (s *Solver) report(log *slog.Logger, span *trace.Span, out Outcome) {
	if s.deps.History != nil {
		s.deps.History.Record(out, s.now())
	}
	reason := apperrors.CodeOf(out.Err)
	switch {
	case out.Clicked:
		log.Info("answered", "word", out.Word, "target", out.Target, "slot", out.Slot,
			"score", out.Score, "duration", out.Duration.Round(time.Millisecond))
	case reason == apperrors.NoChange:
	case apperrors.IsSkip(out.Err):
		log.Debug("skipped", "reason", reason.String(), "word", out.Word, "target", out.Target, "span", span)
	default:
		log.Debug("iteration failed", "reason", reason.String(), "error", out.Err, "span", span)
	}
}
