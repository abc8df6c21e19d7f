package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/resilience"
)

type countingBackend struct {
	calls atomic.Int32
	fn    func(word string) (string, error)
}

func (b *countingBackend) Translate(_ context.Context, word string) (string, error) {
	b.calls.Add(1)
	return b.fn(word)
}

func fastRetry() Option {
	return WithRetry(resilience.Backoff{Retries: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond})
}

func newTestCache(t *testing.T, b Backend, capacity int) *Cache {
	t.Helper()
	c, err := NewCache(b, capacity, fastRetry())
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}
	return c
}

func TestCacheHitSkipsBackend(t *testing.T) {
	b := &countingBackend{fn: func(string) (string, error) { return "如果", nil }}
	c := newTestCache(t, b, 8)

	if got := c.Translate(context.Background(), "if"); got != "如果" {
		t.Fatalf("Translate() = %q, want 如果", got)
	}
	if got := c.Translate(context.Background(), "IF"); got != "如果" {
		t.Fatalf("second Translate() = %q, want 如果", got)
	}
	if n := b.calls.Load(); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
}

func TestCacheAppliesCorrections(t *testing.T) {
	var asked string
	b := &countingBackend{fn: func(w string) (string, error) { asked = w; return "如果", nil }}
	c := newTestCache(t, b, 8)

	if got := c.Translate(context.Background(), "1f"); got != "如果" {
		t.Errorf("Translate(1f) = %q", got)
	}
	if asked != "if" {
		t.Errorf("backend asked %q, want if", asked)
	}
	c.Translate(context.Background(), "lf")
	c.Translate(context.Background(), "ll")
	if n := b.calls.Load(); n != 1 {
		t.Errorf("corrected variants should share one entry, calls = %d", n)
	}
}

func TestCacheDoesNotStoreFailures(t *testing.T) {
	fail := true
	b := &countingBackend{fn: func(string) (string, error) {
		if fail {
			return "", apperrors.New(apperrors.TranslateFailed, "nope")
		}
		return "苹果", nil
	}}
	c := newTestCache(t, b, 8)

	if got := c.Translate(context.Background(), "apple"); got != "" {
		t.Fatalf("failed Translate() = %q, want empty", got)
	}
	if c.Len() != 0 {
		t.Error("failure should not be cached")
	}
	fail = false
	if got := c.Translate(context.Background(), "apple"); got != "苹果" {
		t.Errorf("Translate() after recovery = %q, want 苹果", got)
	}
}

func TestCacheDoesNotStoreEmpty(t *testing.T) {
	b := &countingBackend{fn: func(string) (string, error) { return "OK", nil }}
	c := newTestCache(t, b, 8)

	if got := c.Translate(context.Background(), "ok"); got != "" {
		t.Errorf("Translate() = %q, want empty after normalization", got)
	}
	if c.Len() != 0 {
		t.Error("empty result should not be cached")
	}
}

func TestCacheRetriesTransient(t *testing.T) {
	b := &countingBackend{}
	b.fn = func(string) (string, error) {
		if b.calls.Load() == 1 {
			return "", apperrors.New(apperrors.Unavailable, "blip")
		}
		return "猫", nil
	}
	c := newTestCache(t, b, 8)

	if got := c.Translate(context.Background(), "cat"); got != "猫" {
		t.Errorf("Translate() = %q, want 猫", got)
	}
	if n := b.calls.Load(); n != 2 {
		t.Errorf("backend calls = %d, want 2", n)
	}
}

func TestCacheEvictsLeastRecent(t *testing.T) {
	b := &countingBackend{fn: func(w string) (string, error) { return map[string]string{"a1": "一", "b": "二", "c": "三"}[w], nil }}
	c := newTestCache(t, b, 2)
	ctx := context.Background()

	c.Translate(ctx, "a1")
	c.Translate(ctx, "b")
	c.Translate(ctx, "c")
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	c.Translate(ctx, "a1")
	if n := b.calls.Load(); n != 4 {
		t.Errorf("evicted word should be fetched again, calls = %d", n)
	}
}

func TestCachePermanentFailuresKeepBreakerClosed(t *testing.T) {
	cfg := resilience.TranslateConfig()
	cfg.Threshold = 1
	br := resilience.New("translate", cfg)
	c, err := NewCache(Static{"if": "如果"}, 8, fastRetry(), WithBreaker(br))
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	c.Translate(context.Background(), "unknown")
	if br.State() != resilience.Closed {
		t.Fatalf("breaker = %v, want closed", br.State())
	}
	if got := c.Translate(context.Background(), "if"); got != "如果" {
		t.Errorf("Translate(if) = %q", got)
	}
}

func TestRetryBudgetFitsLookupTimeout(t *testing.T) {
	b := resilience.TranslateBackoff()
	if b.Budget() >= DefaultTimeout {
		t.Fatalf("retry budget %v leaves no time for the backend within %v", b.Budget(), DefaultTimeout)
	}

	// The backoff sleeps under the lookup deadline, so the retry only happens
	// when the budget fits.
	backend := &countingBackend{fn: func(string) (string, error) {
		return "", apperrors.New(apperrors.Unavailable, "endpoint down")
	}}
	c, err := NewCache(backend, 8, WithTimeout(DefaultTimeout))
	if err != nil {
		t.Fatalf("NewCache() error: %v", err)
	}

	start := time.Now()
	if got := c.Translate(context.Background(), "if"); got != "" {
		t.Errorf("Translate() = %q, want empty on outage", got)
	}
	if elapsed := time.Since(start); elapsed > b.Budget()+time.Second {
		t.Errorf("lookup took %v", elapsed)
	}
	if n := backend.calls.Load(); n != int32(b.Retries+1) {
		t.Errorf("backend calls = %d, want %d", n, b.Retries+1)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"如果", "如果"},
		{"如果（连词）", "如果"},
		{"如果(conj.)", "如果"},
		{"它, 这", "它这"},
		{"中华人民共和国", "中华人民"},
		{"hello", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	tests := map[string]string{
		"1f": "if", "LF": "if", "ll": "if",
		"1t": "it", "lt": "it", "at": "at",
		" Apple ": "apple",
	}
	for in, want := range tests {
		if got := Key(in); got != want {
			t.Errorf("Key(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGoogleTranslate(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[["如果","if",null,null,10]],null,"en",null,null,null,1,[],[["en"],null,[1],["en"]]]`))
	}))
	defer srv.Close()

	g := NewGoogle(srv.Client(), srv.URL)
	got, err := g.Translate(context.Background(), "if")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if got != "如果" {
		t.Errorf("Translate() = %q, want 如果", got)
	}
	if !strings.Contains(gotQuery, "tl=zh-CN") || !strings.Contains(gotQuery, "q=if") {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGoogleStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   apperrors.Code
	}{
		{http.StatusTooManyRequests, apperrors.RateLimited},
		{http.StatusBadGateway, apperrors.Unavailable},
		{http.StatusBadRequest, apperrors.TranslateFailed},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		}))
		_, err := NewGoogle(srv.Client(), srv.URL).Translate(context.Background(), "if")
		srv.Close()
		if !apperrors.IsCode(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
	}
}

func TestParseGoogleMalformed(t *testing.T) {
	for _, body := range []string{`{}`, `[]`, `["x"]`, `not json`} {
		if _, err := parseGoogle([]byte(body)); !apperrors.IsCode(err, apperrors.TranslateFailed) {
			t.Errorf("parseGoogle(%s) error = %v, want TRANSLATE_FAILED", body, err)
		}
	}
	got, err := parseGoogle([]byte(`[[["如",""],["果",""]]]`))
	if err != nil || got != "如果" {
		t.Errorf("multi-segment = %q, %v", got, err)
	}
}

func TestStatic(t *testing.T) {
	if got, err := DefaultStatic.Translate(context.Background(), "if"); err != nil || got != "如果" {
		t.Errorf("Translate(if) = %q, %v", got, err)
	}
	if _, err := DefaultStatic.Translate(context.Background(), "zebra"); !apperrors.IsCode(err, apperrors.TranslateFailed) {
		t.Errorf("unknown word error = %v", err)
	}
}
