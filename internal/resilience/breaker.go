// Package resilience keeps a failing OCR sidecar or translation endpoint from
// stalling the answer loop. A Breaker fails fast while the collaborator is
// down; Retry gives transient errors a short second chance.
package resilience

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
)

// State is the breaker position.
type State uint32

const (
	Closed State = iota
	Open
	HalfOpen
)

var stateNames = [...]string{Closed: "closed", Open: "open", HalfOpen: "half-open"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// ErrOpen is returned without calling through while the breaker is open.
var ErrOpen = errors.New("circuit breaker open")

// Transition describes one state change of a named breaker.
type Transition struct {
	Breaker  string
	From, To State
	At       time.Time
}

// Observer is told about every transition, synchronously.
type Observer func(Transition)

// Option configures a Breaker.
type Option func(*Breaker)

// WithObserver reports transitions to fn.
func WithObserver(fn Observer) Option {
	return func(b *Breaker) { b.observe = fn }
}

// Breaker guards one collaborator. Consecutive counted failures open it;
// after OpenFor one trial call is let through (half-open) and TrialSuccesses
// successes close it again.
type Breaker struct {
	name    string
	cfg     Config
	now     func() time.Time
	observe Observer

	state    atomic.Uint32
	failures atomic.Int32
	trials   atomic.Int32
	openedAt atomic.Int64
}

// New creates a closed breaker. name identifies the collaborator in logs and
// transitions.
func New(name string, cfg Config, opts ...Option) *Breaker {
	b := &Breaker{name: name, cfg: cfg.normalize(), now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the current position.
func (b *Breaker) State() State {
	return State(b.state.Load())
}

// Do runs fn unless the breaker is open.
func (b *Breaker) Do(fn func() error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn()
	b.settle(err)
	return err
}

// Call is Do for functions that return a value.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var out T
	err := b.Do(func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func (b *Breaker) admit() error {
	if b.State() != Open {
		return nil
	}
	if b.now().Sub(time.Unix(0, b.openedAt.Load())) < b.cfg.OpenFor {
		return ErrOpen
	}
	b.moveTo(HalfOpen)
	return nil
}

// settle records the outcome. Errors the config does not count leave the
// failure streak alone and, like successes, prove the collaborator answers.
func (b *Breaker) settle(err error) {
	if err != nil && b.cfg.Counts(err) {
		n := b.failures.Add(1)
		if b.State() == HalfOpen || n >= int32(b.cfg.Threshold) {
			b.moveTo(Open)
		}
		return
	}
	switch b.State() {
	case HalfOpen:
		if b.trials.Add(1) >= int32(b.cfg.TrialSuccesses) {
			b.moveTo(Closed)
		}
	case Closed:
		b.failures.Store(0)
	}
}

func (b *Breaker) moveTo(to State) {
	from := State(b.state.Swap(uint32(to)))
	if from == to {
		return
	}
	at := b.now()
	b.trials.Store(0)

	switch to {
	case Open:
		b.openedAt.Store(at.UnixNano())
		slog.Warn("circuit breaker opened", "breaker", b.name, "failures", b.failures.Load(), "open_for", b.cfg.OpenFor)
	case HalfOpen:
		slog.Info("circuit breaker probing", "breaker", b.name)
	case Closed:
		b.failures.Store(0)
		slog.Info("circuit breaker closed", "breaker", b.name)
	}

	if b.observe != nil {
		b.observe(Transition{Breaker: b.name, From: from, To: to, At: at})
	}
}
