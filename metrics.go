package oasbind

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics of the validation pipeline.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasbind",
				Name:      "requests_total",
				Help:      "Total number of requests handled per operation",
			},
			[]string{"operation", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "oasbind",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds, validation included",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"operation"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "oasbind",
				Name:      "validation_failures_total",
				Help:      "Total number of rejected requests and responses per stage",
			},
			[]string{"operation", "stage"},
		),
	}
}

// Validation stages reported in the stage label.
const (
	StageRequest  = "request"
	StageSecurity = "security"
	StageResponse = "response"
)

func (m *Metrics) observe(operation string, status int, start time.Time) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) failure(operation, stage string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(operation, stage).Inc()
}
