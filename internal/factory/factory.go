package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/matchclient/internal/session"
	"github.com/mcoot/matchclient/internal/transport"
)

// App contains all wired client components
type App struct {
	// Transport is the instrumented transport the session uses
	Transport transport.Transport
	Metrics   *transport.Metrics

	// Gatherer exposes the metrics registered by this app
	Gatherer prometheus.Gatherer

	Client *session.Client
	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Transport holds HTTP settings; BaseURL is required
	Transport transport.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Registry receives the transport metrics (optional)
	// If nil, a fresh registry is created
	Registry *prometheus.Registry
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if err := validateBaseURL(cfg.Transport.BaseURL); err != nil {
		return nil, err
	}

	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	metrics := transport.NewMetrics(reg)
	tr := transport.Instrument(transport.NewHTTP(cfg.Transport, logger), metrics)

	return &App{
		Transport: tr,
		Metrics:   metrics,
		Gatherer:  reg,
		Client:    session.New(tr, logger),
		Logger:    logger,
	}, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return errors.New("server URL is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid server URL %q: missing host", raw)
	}
	return nil
}
