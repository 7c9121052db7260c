package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/mcoot/matchclient/internal/protocol"
)

// RequestIDHeader carries a per-call id that also appears in debug logs
const RequestIDHeader = "X-Request-Id"

// HTTP is a Transport backed by a pooled net/http client
type HTTP struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// Ensure HTTP implements Transport
var _ Transport = (*HTTP)(nil)

// NewHTTP creates an HTTP transport. A nil logger discards output.
func NewHTTP(cfg Config, logger *slog.Logger) *HTTP {
	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.Timeout
	httpClient.Transport = NewLoggingRoundTripper(httpClient.Transport, logger)

	return &HTTP{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}
}

// BaseURL returns the normalised server root
func (t *HTTP) BaseURL() string {
	return t.baseURL
}

// Call performs one request against baseURL+path
func (t *HTTP) Call(ctx context.Context, method, path string, query []Param, body string) (json.RawMessage, error) {
	fail := func(status int, err error) error {
		return &protocol.TransportError{Method: method, Path: path, Status: status, Err: err}
	}

	target := t.baseURL + path
	if q := EncodeQuery(query); q != "" {
		target += "?" + q
	}

	var bodyReader io.Reader = http.NoBody
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fail(0, fmt.Errorf("failed to create request: %w", err))
	}

	if body != "" {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fail(0, fmt.Errorf("request failed: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fail(resp.StatusCode, fmt.Errorf("failed to read response: %w", err))
	}

	// Error statuses still carry an envelope; only non-JSON bodies are transport failures
	if !json.Valid(respBody) {
		return nil, fail(resp.StatusCode, errors.New("response body is not JSON"))
	}

	return json.RawMessage(respBody), nil
}
