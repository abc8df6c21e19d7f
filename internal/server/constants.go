// Package server exposes the answer history over HTTP and WebSocket
package server

import "time"

// Server configuration constants
const (
	// Entries returned by /api/history when no limit is given
	DefaultHistoryLimit = 20

	// Per-connection write deadline for broadcasts
	BroadcastWriteTimeout = 2 * time.Second

	ReadHeaderTimeout = 5 * time.Second
	ShutdownTimeout   = 5 * time.Second
)
