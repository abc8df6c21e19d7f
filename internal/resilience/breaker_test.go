package resilience

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// fakeClock drives OpenFor without sleeping.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*Breaker, *fakeClock, *[]Transition) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var seen []Transition
	b := New("ocr", cfg, WithObserver(func(tr Transition) { seen = append(seen, tr) }))
	b.now = clock.now
	return b, clock, &seen
}

var errSidecar = apperrors.New(apperrors.Unavailable, "sidecar down")

func fail() error { return errSidecar }
func ok() error   { return nil }

func TestOCRPresetOpensAfterThreeFailures(t *testing.T) {
	b, _, seen := newTestBreaker(OCRConfig())

	calls := 0
	for i := 0; i < OCRThreshold+2; i++ {
		_ = b.Do(func() error { calls++; return errSidecar })
	}

	if calls != OCRThreshold {
		t.Errorf("calls = %d, want %d before failing fast", calls, OCRThreshold)
	}
	if b.State() != Open {
		t.Errorf("State() = %v, want open", b.State())
	}
	if err := b.Do(ok); !errors.Is(err, ErrOpen) {
		t.Errorf("Do() while open = %v, want ErrOpen", err)
	}
	if len(*seen) != 1 || (*seen)[0] != (Transition{Breaker: "ocr", From: Closed, To: Open, At: (*seen)[0].At}) {
		t.Errorf("transitions = %+v, want one closed->open", *seen)
	}
}

func TestSuccessBreaksFailureStreak(t *testing.T) {
	b, _, _ := newTestBreaker(OCRConfig())

	for i := 0; i < 10; i++ {
		_ = b.Do(fail)
		_ = b.Do(fail)
		_ = b.Do(ok)
	}
	if b.State() != Closed {
		t.Errorf("State() = %v, want closed: failures were never consecutive", b.State())
	}
}

func TestRecoveryThroughHalfOpen(t *testing.T) {
	b, clock, seen := newTestBreaker(OCRConfig())
	for i := 0; i < OCRThreshold; i++ {
		_ = b.Do(fail)
	}

	clock.advance(OCROpenFor - time.Millisecond)
	if err := b.Do(ok); !errors.Is(err, ErrOpen) {
		t.Fatalf("Do() before OpenFor = %v, want ErrOpen", err)
	}

	clock.advance(time.Millisecond)
	for i := 0; i < OCRTrialSuccesses; i++ {
		if err := b.Do(ok); err != nil {
			t.Fatalf("trial %d: %v", i, err)
		}
	}
	if b.State() != Closed {
		t.Errorf("State() = %v, want closed", b.State())
	}

	var path []State
	for _, tr := range *seen {
		path = append(path, tr.To)
	}
	want := []State{Open, HalfOpen, Closed}
	if len(path) != len(want) || path[0] != want[0] || path[1] != want[1] || path[2] != want[2] {
		t.Errorf("transition path = %v, want %v", path, want)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	b, clock, _ := newTestBreaker(OCRConfig())
	for i := 0; i < OCRThreshold; i++ {
		_ = b.Do(fail)
	}
	clock.advance(OCROpenFor)

	_ = b.Do(fail)
	if b.State() != Open {
		t.Fatalf("State() = %v, want open after failed trial", b.State())
	}
	if err := b.Do(ok); !errors.Is(err, ErrOpen) {
		t.Errorf("reopened breaker should wait a full OpenFor again, got %v", err)
	}
}

func TestTranslatePresetIgnoresPermanentErrors(t *testing.T) {
	b, _, _ := newTestBreaker(TranslateConfig())
	unknown := apperrors.New(apperrors.TranslateFailed, "no translation for word")

	for i := 0; i < TranslateThreshold*2; i++ {
		if err := b.Do(func() error { return unknown }); err != unknown {
			t.Fatalf("Do() = %v, want the backend error passed through", err)
		}
	}
	if b.State() != Closed {
		t.Errorf("State() = %v, want closed: unknown words are not outages", b.State())
	}

	for i := 0; i < TranslateThreshold; i++ {
		_ = b.Do(fail)
	}
	if b.State() != Open {
		t.Errorf("State() = %v, want open after %d outages", b.State(), TranslateThreshold)
	}
}

func TestCall(t *testing.T) {
	b, _, _ := newTestBreaker(OCRConfig())

	got, err := Call(b, func() (string, error) { return "如果", nil })
	if err != nil || got != "如果" {
		t.Errorf("Call() = %q, %v", got, err)
	}

	got, err = Call(b, func() (string, error) { return "partial", errSidecar })
	if err != errSidecar || got != "partial" {
		t.Errorf("Call() on failure = %q, %v", got, err)
	}
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{}.normalize()
	if cfg.Threshold != 1 || cfg.TrialSuccesses != 1 || cfg.Counts == nil {
		t.Errorf("normalize() = %+v", cfg)
	}
	if !cfg.Counts(errors.New("x")) {
		t.Error("nil Counts should count every error")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Closed: "closed", Open: "open", HalfOpen: "half-open", State(9): "unknown"} {
		if s.String() != want {
			t.Errorf("State(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}
