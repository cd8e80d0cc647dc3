package predictor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"racket/internal/tensor"
)

var (
	predictTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "racket",
			Subsystem: "predictor",
			Name:      "requests_total",
			Help:      "Total number of prediction calls by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	predictDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "racket",
			Subsystem: "predictor",
			Name:      "request_duration_seconds",
			Help:      "Duration of prediction calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(predictTotal, predictDuration)
}

type instrumented struct {
	next    Predictor
	backend string
}

// Instrument records call counts and latency for p under the backend label.
func Instrument(p Predictor, backend string) Predictor {
	if backend == "" {
		backend = "unspecified"
	}
	return &instrumented{next: p, backend: backend}
}

func (i *instrumented) Predict(ctx context.Context, model string, input tensor.Tensor) (Result, error) {
	start := time.Now()
	res, err := i.next.Predict(ctx, model, input)
	predictDuration.WithLabelValues(i.backend).Observe(time.Since(start).Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	predictTotal.WithLabelValues(i.backend, outcome).Inc()
	return res, err
}
