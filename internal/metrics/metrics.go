package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder is what the services and middleware report to.
type Recorder interface {
	IncCommand(op, result string)
	IncQueryFailure(op string)
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

type promRecorder struct {
	commands       *prometheus.CounterVec
	queryFailures  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registers the dashboard metrics on registry.
func New(registry *prometheus.Registry) Recorder {
	f := promauto.With(registry)
	return &promRecorder{
		commands: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invoice_commands_total",
				Help: "Invoice mutations by operation and result",
			},
			[]string{"op", "result"},
		),
		queryFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_query_failures_total",
				Help: "Failed dashboard reads by operation",
			},
			[]string{"op"},
		),
		requestLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// NewRegistry returns a registry with the Go and process collectors attached.
func NewRegistry() *prometheus.Registry {
	r := prometheus.NewRegistry()
	r.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return r
}

func (m *promRecorder) IncCommand(op, result string) {
	m.commands.WithLabelValues(op, result).Inc()
}

func (m *promRecorder) IncQueryFailure(op string) {
	m.queryFailures.WithLabelValues(op).Inc()
}

func (m *promRecorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestLatency.WithLabelValues(method, route, statusLabel(status)).Observe(elapsed.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncCommand(string, string)                         {}
func (Nop) IncQueryFailure(string)                            {}
func (Nop) ObserveRequest(string, string, int, time.Duration) {}
