package transport

import (
	"io"
	"log/slog"
	"net/http"
	"time"
)

// LoggingRoundTripper logs every outgoing request at debug level
type LoggingRoundTripper struct {
	next   http.RoundTripper
	logger *slog.Logger
}

// NewLoggingRoundTripper wraps next; a nil next means http.DefaultTransport
// and a nil logger discards output
func NewLoggingRoundTripper(next http.RoundTripper, logger *slog.Logger) *LoggingRoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LoggingRoundTripper{next: next, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (rt *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := rt.next.RoundTrip(req)

	attrs := []any{
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
		slog.Duration("duration", time.Since(start)),
	}

	if err != nil {
		rt.logger.DebugContext(req.Context(), "http round trip failed", append(attrs, slog.String("error", err.Error()))...)
		return nil, err
	}

	rt.logger.DebugContext(req.Context(), "http round trip",
		append(attrs,
			slog.Int("status", resp.StatusCode),
			slog.Int64("size", resp.ContentLength),
		)...,
	)
	return resp, nil
}
