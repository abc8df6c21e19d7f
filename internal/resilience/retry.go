package resilience

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Translation lookups sit inside a sub-second loop: one quick retry at most.
const (
	TranslateRetries    = 1
	TranslateBaseDelay  = 100 * time.Millisecond
	TranslateMaxDelay   = 500 * time.Millisecond
	DefaultJitterFactor = 0.2
)

// Backoff describes how Retry spaces attempts.
type Backoff struct {
	Retries   int           // attempts after the first
	BaseDelay time.Duration // doubled per attempt
	MaxDelay  time.Duration
	Jitter    float64 // fraction of the delay, split evenly around it
	Retryable func(error) bool
}

// TranslateBackoff is the policy for translation lookups.
func TranslateBackoff() Backoff {
	return Backoff{
		Retries:   TranslateRetries,
		BaseDelay: TranslateBaseDelay,
		MaxDelay:  TranslateMaxDelay,
		Jitter:    DefaultJitterFactor,
		Retryable: IsRetryable,
	}
}

// Budget is the longest total time Retry can spend sleeping.
func (b Backoff) Budget() time.Duration {
	var total time.Duration
	for attempt := range max(b.Retries, 0) {
		total += b.ceiling(attempt) + time.Duration(float64(b.ceiling(attempt))*b.Jitter/2)
	}
	return total
}

// Delay returns the jittered wait before retry number attempt+1.
func (b Backoff) Delay(attempt int) time.Duration {
	d := b.ceiling(attempt)
	return d + time.Duration(float64(d)*b.Jitter*(rand.Float64()-0.5))
}

func (b Backoff) ceiling(attempt int) time.Duration {
	d := b.BaseDelay << min(attempt, 6)
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Retry calls fn until it succeeds, returns an error b does not consider
// retryable, runs out of retries, or ctx ends. It returns the last error.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	retryable := b.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil || attempt >= b.Retries || !retryable(err) {
			return err
		}

		delay := b.Delay(attempt)
		slog.Debug("retrying after error", "attempt", attempt+1, "of", b.Retries, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// IsRetryable reports whether err is worth another attempt. An open breaker
// is not; application errors follow their code; gRPC errors their status;
// anything else is assumed to be a transport hiccup.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, ErrOpen) {
		return false
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.IsRetryable(err)
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
			return true
		}
		return false
	}
	return true
}
