package observer

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusObserver exports events as Prometheus metrics.
type PrometheusObserver struct {
	generations       *prometheus.CounterVec
	generationSeconds *prometheus.HistogramVec
	scans             *prometheus.CounterVec
	scanSeconds       prometheus.Histogram
}

// NewPrometheusObserver registers its collectors with reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	factory := promauto.With(reg)
	return &PrometheusObserver{
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barcode_generations_total",
				Help: "Total number of generation requests",
			},
			[]string{"symbology", "format", "status"}, // status: ok, fallback, failed
		),
		generationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barcode_generation_duration_seconds",
				Help:    "Generation duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"symbology"},
		),
		scans: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barcode_scans_total",
				Help: "Total number of scan requests",
			},
			[]string{"status"}, // status: decoded, not_found
		),
		scanSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "barcode_scan_duration_seconds",
				Help:    "Scan duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// OnEvent updates the collectors.
func (o *PrometheusObserver) OnEvent(_ context.Context, event Event) {
	switch event.EventType {
	case GenerationCompleted, GenerationFallback, GenerationFailed:
		status := "ok"
		switch event.EventType {
		case GenerationFallback:
			status = "fallback"
		case GenerationFailed:
			status = "failed"
		}
		sym := labelOrUnknown(event.Symbology)
		o.generations.WithLabelValues(sym, labelOrUnknown(event.Format), status).Inc()
		o.generationSeconds.WithLabelValues(sym).Observe(event.ProcessingTime.Seconds())
	case ScanCompleted:
		o.scans.WithLabelValues("decoded").Inc()
		o.scanSeconds.Observe(event.ProcessingTime.Seconds())
	case ScanFailed:
		o.scans.WithLabelValues("not_found").Inc()
		o.scanSeconds.Observe(event.ProcessingTime.Seconds())
	}
}

// GetObserverName returns the observer name
func (o *PrometheusObserver) GetObserverName() string {
	return "prometheus_observer"
}

func labelOrUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
