package transport

import (
	"context"
	"encoding/json"
	"errors"
	"path"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mcoot/matchclient/internal/protocol"
)

// Metrics holds the per-call transport instruments
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the instruments and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchclient",
			Subsystem: "transport",
			Name:      "calls_total",
			Help:      "Count of server calls by method, command and outcome (ok, remote_error, error).",
		}, []string{"method", "command", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "matchclient",
			Subsystem: "transport",
			Name:      "call_duration_seconds",
			Help:      "Latency of server calls by command.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}

	reg.MustRegister(m.calls, m.duration)
	return m
}

// Instrument decorates next so every call is counted and timed.
// The command label is the last path segment so server ids never become labels.
// A response carrying an error envelope counts as remote_error; a failed
// round trip counts as error.
func Instrument(next Transport, m *Metrics) Transport {
	return TransportFunc(func(ctx context.Context, method, p string, query []Param, body string) (json.RawMessage, error) {
		command := path.Base(p)
		start := time.Now()

		resp, err := next.Call(ctx, method, p, query, body)

		m.duration.WithLabelValues(command).Observe(time.Since(start).Seconds())
		m.calls.WithLabelValues(method, command, outcome(resp, err)).Inc()

		return resp, err
	})
}

func outcome(resp json.RawMessage, err error) string {
	if err != nil {
		return "error"
	}
	var remote *protocol.RemoteError
	if _, perr := protocol.ParseEnvelope(resp); errors.As(perr, &remote) {
		return "remote_error"
	}
	return "ok"
}
