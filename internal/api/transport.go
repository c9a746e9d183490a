package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// loggingTransport is an http.RoundTripper that logs each outgoing request
// as a structured JSON line via the provided slog.Logger. It captures
// method, path, HTTP status, duration, and a generated request ID that is
// also sent to the backend as X-Request-ID for cross-correlation.
type loggingTransport struct {
	next http.RoundTripper
	log  *slog.Logger
}

// newLoggingTransport wraps next (or http.DefaultTransport when nil) with
// request logging.
func newLoggingTransport(next http.RoundTripper, log *slog.Logger) *loggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, log: log}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	// The RoundTripper contract forbids mutating the caller's request;
	// clone before attaching the correlation header.
	reqID := uuid.NewString()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", reqID)

	resp, err := t.next.RoundTrip(req)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", reqID,
	}
	if err != nil {
		t.log.WarnContext(req.Context(), "request failed", append(attrs, "error", err)...)
		return nil, err
	}

	t.log.DebugContext(req.Context(), "request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
