package trace

import "net/http"

// Middleware continues the caller's trace from the request headers, or
// starts one, and echoes the trace ID in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := rootIDs()
		if tid := r.Header.Get(TraceIDKey); tid != "" {
			ids = IDs{Trace: tid, Span: r.Header.Get(SpanIDKey)}.child()
		}
		w.Header().Set(TraceIDKey, ids.Trace)
		next.ServeHTTP(w, r.WithContext(withIDs(r.Context(), ids)))
	})
}
