package solver

import (
	"sync"
	"time"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/resilience"
)

// Entry is a recorded outcome.
type Entry struct {
	Timestamp time.Time
	Outcome
}

// Stats summarizes everything recorded since start.
type Stats struct {
	Iterations int
	Clicks     int
	Forced     int
	// Skips counts non-click outcomes by code name.
	Skips map[string]int
	// LastAnswer is the most recent click, nil before the first one.
	LastAnswer *Entry
	// Breakers holds the current state and trip count of every breaker that
	// has changed state.
	Breakers map[string]BreakerStats
}

// BreakerStats describes one collaborator's circuit breaker.
type BreakerStats struct {
	State string
	Trips int
	Since time.Time
}

// History keeps a bounded in-memory record of outcomes and publishes them.
// Unchanged-frame outcomes are only counted, or they would crowd out
// everything else at loop rate.
type History struct {
	mu         sync.RWMutex
	entries    []Entry
	maxSize    int
	iterations int
	clicks     int
	forced     int
	skips      map[apperrors.Code]int
	lastAnswer *Entry
	breakers   map[string]BreakerStats
	eventsCh   chan Entry
}

// NewHistory creates a history holding at most maxEntries entries.
func NewHistory(maxEntries, eventBuffer int) *History {
	return &History{
		entries:  make([]Entry, 0, maxEntries),
		maxSize:  maxEntries,
		skips:    make(map[apperrors.Code]int),
		breakers: make(map[string]BreakerStats),
		eventsCh: make(chan Entry, eventBuffer),
	}
}

// Record stores an outcome and emits it to Events.
func (h *History) Record(o Outcome, at time.Time) {
	e := Entry{Timestamp: at, Outcome: o}

	h.mu.Lock()
	h.iterations++
	if o.Forced {
		h.forced++
	}
	if o.Clicked {
		h.clicks++
		h.lastAnswer = &e
	} else {
		h.skips[apperrors.CodeOf(o.Err)]++
	}
	noChange := apperrors.IsCode(o.Err, apperrors.NoChange)
	if !noChange {
		h.entries = append(h.entries, e)
		if len(h.entries) > h.maxSize {
			h.entries = h.entries[len(h.entries)-h.maxSize:]
		}
	}
	h.mu.Unlock()

	if !noChange {
		h.emit(e)
	}
}

// ObserveBreaker records a circuit breaker transition. It has the
// resilience.Observer signature.
func (h *History) ObserveBreaker(tr resilience.Transition) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b := h.breakers[tr.Breaker]
	if tr.To == resilience.Open {
		b.Trips++
	}
	b.State = tr.To.String()
	b.Since = tr.At
	h.breakers[tr.Breaker] = b
}

// emit sends an entry without blocking the loop.
func (h *History) emit(e Entry) {
	select {
	case h.eventsCh <- e:
	default:
	}
}

// Events returns the channel of recorded entries.
func (h *History) Events() <-chan Entry {
	return h.eventsCh
}

// Recent returns up to n most recent entries, oldest first.
func (h *History) Recent(n int) []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if n <= 0 || n > len(h.entries) {
		n = len(h.entries)
	}
	out := make([]Entry, n)
	copy(out, h.entries[len(h.entries)-n:])
	return out
}

// Stats returns a snapshot of the counters.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	skips := make(map[string]int, len(h.skips))
	for code, n := range h.skips {
		skips[code.String()] = n
	}
	breakers := make(map[string]BreakerStats, len(h.breakers))
	for name, b := range h.breakers {
		breakers[name] = b
	}
	var last *Entry
	if h.lastAnswer != nil {
		cp := *h.lastAnswer
		last = &cp
	}
	return Stats{
		Iterations: h.iterations,
		Clicks:     h.clicks,
		Forced:     h.forced,
		Skips:      skips,
		LastAnswer: last,
		Breakers:   breakers,
	}
}
