package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
	"github.com/GriffinCanCode/autoquiz/internal/solver"
	"github.com/GriffinCanCode/autoquiz/internal/syncx"
	"github.com/GriffinCanCode/autoquiz/internal/trace"
)

// Source is the read side of the answer history.
type Source interface {
	Stats() solver.Stats
	Recent(n int) []solver.Entry
	Events() <-chan solver.Entry
}

// AnswerMessage describes a click.
type AnswerMessage struct {
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Word       string    `json:"word"`
	Target     string    `json:"target"`
	Slot       int       `json:"slot"`
	Score      int       `json:"score"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	Forced     bool      `json:"forced"`
	DurationMS int64     `json:"duration_ms"`
}

// SkipMessage describes an iteration that ended without a click.
type SkipMessage struct {
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Reason     string    `json:"reason"`
	Error      string    `json:"error,omitempty"`
	Word       string    `json:"word,omitempty"`
	Target     string    `json:"target,omitempty"`
	Forced     bool      `json:"forced"`
	DurationMS int64     `json:"duration_ms"`
}

// StatusResponse is served by /api/status.
type StatusResponse struct {
	Iterations int            `json:"iterations"`
	Clicks     int            `json:"clicks"`
	Forced     int            `json:"forced"`
	Skips      map[string]int `json:"skips"`
	LastAnswer *AnswerMessage `json:"last_answer,omitempty"`
	// Breakers lists collaborators whose circuit breaker has ever moved.
	Breakers map[string]BreakerStatus `json:"breakers"`
}

// BreakerStatus is one collaborator's circuit breaker.
type BreakerStatus struct {
	State string    `json:"state"`
	Trips int       `json:"trips"`
	Since time.Time `json:"since"`
}

// NewMessage converts a history entry to its wire form.
func NewMessage(e solver.Entry) any {
	if e.Clicked {
		return answerMessage(e)
	}
	msg := SkipMessage{
		Type:       "skip",
		Timestamp:  e.Timestamp,
		Reason:     reason(e.Err),
		Word:       e.Word,
		Target:     e.Target,
		Forced:     e.Forced,
		DurationMS: e.Duration.Milliseconds(),
	}
	if e.Err != nil {
		msg.Error = e.Err.Error()
	}
	return msg
}

func reason(err error) string {
	return apperrors.CodeOf(err).String()
}

func answerMessage(e solver.Entry) AnswerMessage {
	return AnswerMessage{
		Type:       "answer",
		Timestamp:  e.Timestamp,
		Word:       e.Word,
		Target:     e.Target,
		Slot:       e.Slot,
		Score:      e.Score,
		X:          e.Point.X,
		Y:          e.Point.Y,
		Forced:     e.Forced,
		DurationMS: e.Duration.Milliseconds(),
	}
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	source Source
	conns  *syncx.Set[*websocket.Conn]
}

// New creates a new server.
func New(source Source) *Server {
	return &Server{
		source: source,
		conns:  syncx.NewSet[*websocket.Conn](),
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	// Apply middleware: trace -> CORS
	return corsMiddleware(trace.Middleware(mux))
}

// ListenAndServe serves on addr and broadcasts history events until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.broadcast(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("status server listening", "addr", lis.Addr().String())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	s.conns.Add(conn)
	defer s.conns.Remove(conn)

	log := trace.Logger(r.Context())
	log.Info("websocket connected", "remote", r.RemoteAddr)

	// The feed is one-way; CloseRead discards client frames and ends the
	// context once the peer goes away.
	<-conn.CloseRead(r.Context()).Done()
	log.Debug("websocket disconnected", "remote", r.RemoteAddr)
}

func (s *Server) broadcast(ctx context.Context) {
	events := s.source.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			s.publish(ctx, NewMessage(e))
		}
	}
}

func (s *Server) publish(ctx context.Context, msg any) {
	for _, conn := range s.conns.Snapshot() {
		go func(c *websocket.Conn) {
			wctx, cancel := context.WithTimeout(ctx, BroadcastWriteTimeout)
			defer cancel()
			_ = wsjson.Write(wctx, c, msg)
		}(conn)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	stats := s.source.Stats()
	resp := StatusResponse{
		Iterations: stats.Iterations,
		Clicks:     stats.Clicks,
		Forced:     stats.Forced,
		Skips:      stats.Skips,
		Breakers:   make(map[string]BreakerStatus, len(stats.Breakers)),
	}
	for name, b := range stats.Breakers {
		resp.Breakers[name] = BreakerStatus{State: b.State, Trips: b.Trips, Since: b.Since}
	}
	if stats.LastAnswer != nil {
		last := answerMessage(*stats.LastAnswer)
		resp.LastAnswer = &last
	}
	writeJSON(w, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := s.source.Recent(limit)
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = NewMessage(e)
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
