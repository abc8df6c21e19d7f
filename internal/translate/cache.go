// Package translate maps prompt words to short Chinese translations
package translate

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/resilience"
	"github.com/GriffinCanCode/autoquiz/internal/trace"
)

// Backend produces a raw translation for a single English word.
type Backend interface {
	Translate(ctx context.Context, word string) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, word string) (string, error)

func (f BackendFunc) Translate(ctx context.Context, word string) (string, error) {
	return f(ctx, word)
}

// Option configures a Cache.
type Option func(*Cache)

// WithTimeout bounds each backend lookup.
func WithTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry overrides the retry policy around the backend.
func WithRetry(b resilience.Backoff) Option {
	return func(c *Cache) { c.retry = b }
}

// WithBreaker overrides the circuit breaker around the backend.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *Cache) { c.breaker = b }
}

// Cache memoizes normalized translations in a bounded LRU. Failed or empty
// lookups are not stored.
type Cache struct {
	backend Backend
	entries *lru.Cache[string, string]
	breaker *resilience.Breaker
	retry   resilience.Backoff
	timeout time.Duration
}

// NewCache wraps backend; a non-positive capacity uses DefaultCacheSize.
func NewCache(backend Backend, capacity int, opts ...Option) (*Cache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ConfigInvalid, "create translation cache")
	}
	c := &Cache{
		backend: backend,
		entries: entries,
		breaker: resilience.New("translate", resilience.TranslateConfig()),
		retry:   resilience.TranslateBackoff(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Translate returns the normalized translation of word, or "" when none is
// available.
func (c *Cache) Translate(ctx context.Context, word string) string {
	key := Key(word)
	if key == "" {
		return ""
	}
	if v, ok := c.entries.Get(key); ok {
		return v
	}

	raw, err := c.lookup(ctx, key)
	if err != nil {
		trace.Logger(ctx).Debug("translation failed", "word", key, "error", err)
		return ""
	}
	out := Normalize(raw)
	if out == "" {
		trace.Logger(ctx).Debug("translation has no usable characters", "word", key, "raw", raw)
		return ""
	}
	c.entries.Add(key, out)
	return out
}

// Len returns the number of cached words.
func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) lookup(ctx context.Context, word string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw string
	err := resilience.Retry(ctx, c.retry, func() error {
		var err error
		raw, err = resilience.Call(c.breaker, func() (string, error) {
			return c.backend.Translate(ctx, word)
		})
		return err
	})
	return raw, err
}
