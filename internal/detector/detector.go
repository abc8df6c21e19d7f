package detector

import (
	"image"
	"log/slog"
	"time"
)

// State is what the detector carries between iterations.
type State struct {
	Fingerprint Fingerprint
	// LastFresh is the last time a change was accepted or a click landed.
	LastFresh time.Time
}

// NewState starts the stuck timer at now with no reference fingerprint.
func NewState(now time.Time) State {
	return State{LastFresh: now}
}

// Fresh returns st with the stuck timer reset to now.
func (st State) Fresh(now time.Time) State {
	st.LastFresh = now
	return st
}

// Decision is the outcome of one Evaluate call.
type Decision struct {
	ShouldProcess bool
	// Forced is set when the stuck timeout fired.
	Forced   bool
	Distance float64
}

// Detector handles change detection with a liveness fallback
type Detector struct {
	fp      Fingerprinter
	timeout time.Duration
}

// New creates a detector; a non-positive timeout uses DefaultStuckTimeout.
func New(fp Fingerprinter, timeout time.Duration) *Detector {
	if timeout <= 0 {
		timeout = DefaultStuckTimeout
	}
	return &Detector{fp: fp, timeout: timeout}
}

// Evaluate fingerprints img and decides whether the question should be
// processed. When nothing changed the previous fingerprint stays the
// reference, so slow drift still adds up to a change eventually.
func (d *Detector) Evaluate(img image.Image, st State, now time.Time) (Decision, State, error) {
	curr, err := d.fp.Fingerprint(img)
	if err != nil {
		return Decision{}, st, err
	}

	if stalled := now.Sub(st.LastFresh); stalled > d.timeout {
		slog.Warn("no fresh question for too long, forcing refresh", "stalled", stalled.Round(time.Millisecond))
		dist := maxDistance
		if st.Fingerprint != nil {
			_, dist = d.fp.Changed(st.Fingerprint, curr)
		}
		return Decision{ShouldProcess: true, Forced: true, Distance: dist},
			State{Fingerprint: curr, LastFresh: now}, nil
	}

	if st.Fingerprint == nil {
		return Decision{ShouldProcess: true, Distance: maxDistance},
			State{Fingerprint: curr, LastFresh: now}, nil
	}

	changed, dist := d.fp.Changed(st.Fingerprint, curr)
	if !changed {
		return Decision{Distance: dist}, st, nil
	}
	slog.Debug("question region changed", "distance", dist)
	return Decision{ShouldProcess: true, Distance: dist},
		State{Fingerprint: curr, LastFresh: now}, nil
}
