// Package trace tags each answer-loop iteration and each status request with
// W3C-style trace and span IDs. The IDs travel to the OCR sidecar in gRPC
// metadata and onto every log record written through Logger.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"time"
)

// Propagation keys, shared by gRPC metadata and HTTP headers.
const (
	TraceIDKey      = "x-trace-id"
	SpanIDKey       = "x-span-id"
	ParentSpanIDKey = "x-parent-span-id"
)

// IDs locate one span inside a trace.
type IDs struct {
	Trace  string // 16 random bytes, hex
	Span   string // 8 random bytes, hex
	Parent string // empty for a root span
}

func rootIDs() IDs {
	return IDs{Trace: randomHex(16), Span: randomHex(8)}
}

// child keeps the trace and hangs a fresh span under ids.Span.
func (ids IDs) child() IDs {
	return IDs{Trace: ids.Trace, Span: randomHex(8), Parent: ids.Span}
}

// pairs flattens ids into alternating key/value strings.
func (ids IDs) pairs() []string {
	kv := []string{TraceIDKey, ids.Trace, SpanIDKey, ids.Span}
	if ids.Parent != "" {
		kv = append(kv, ParentSpanIDKey, ids.Parent)
	}
	return kv
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

type ctxKey struct{}

// FromContext returns the IDs stored by StartSpan or Middleware.
func FromContext(ctx context.Context) (IDs, bool) {
	ids, ok := ctx.Value(ctxKey{}).(IDs)
	return ids, ok
}

func withIDs(ctx context.Context, ids IDs) context.Context {
	return context.WithValue(ctx, ctxKey{}, ids)
}

// Span times one operation. It is owned by the goroutine that started it.
type Span struct {
	Name  string
	IDs   IDs
	start time.Time
	end   time.Time
	attrs []slog.Attr
}

// StartSpan opens a span under the one in ctx, or a new trace when ctx has
// none.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	ids := rootIDs()
	if parent, ok := FromContext(ctx); ok {
		ids = parent.child()
	}
	s := &Span{Name: name, IDs: ids, start: time.Now()}
	return withIDs(ctx, ids), s
}

// SetAttr attaches a value reported with the span.
func (s *Span) SetAttr(key string, val any) {
	s.attrs = append(s.attrs, slog.Any(key, val))
}

// End stops the clock.
func (s *Span) End() {
	s.end = time.Now()
}

// Duration is zero until End is called.
func (s *Span) Duration() time.Duration {
	if s.end.IsZero() {
		return 0
	}
	return s.end.Sub(s.start)
}

// LogValue renders the span as a group: name, duration, then attributes in
// the order they were set.
func (s *Span) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(s.attrs)+2)
	attrs = append(attrs, slog.String("name", s.Name), slog.Duration("duration", s.Duration()))
	return slog.GroupValue(append(attrs, s.attrs...)...)
}

// Logger returns the default logger tagged with ctx's IDs.
func Logger(ctx context.Context) *slog.Logger {
	ids, ok := FromContext(ctx)
	if !ok {
		return slog.Default()
	}
	args := []any{"trace_id", ids.Trace, "span_id", ids.Span}
	if ids.Parent != "" {
		args = append(args, "parent_span_id", ids.Parent)
	}
	return slog.Default().With(args...)
}
