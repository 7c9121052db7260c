package transport

import "time"

// Config holds HTTP transport settings
type Config struct {
	// BaseURL is the server root; commands are appended as path segments
	BaseURL string

	// Timeout bounds a whole round trip. Zero means no timeout.
	Timeout time.Duration

	// UserAgent is sent on every request when non-empty
	UserAgent string
}

// DefaultConfig returns sensible defaults for the HTTP transport
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080",
		Timeout:   30 * time.Second,
		UserAgent: "matchclient/1",
	}
}
