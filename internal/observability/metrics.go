package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus instruments for the acquisition pipeline.
type Metrics struct {
	BodyFetches *prometheus.CounterVec // labels: body, provenance={live,fallback,error}
	RecordCache *prometheus.CounterVec // labels: result={hit,miss}

	HorizonsDuration    prometheus.Histogram
	AcquisitionDuration prometheus.Histogram
	HoroscopesGenerated prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		BodyFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horoscope",
			Name:      "body_fetches_total",
			Help:      "Per-body position fetches by resulting provenance.",
		}, []string{"body", "provenance"}),
		RecordCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "horoscope",
			Name:      "record_cache_total",
			Help:      "Ephemeris record store lookups by result.",
		}, []string{"result"}),
		HorizonsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "horoscope",
			Name:      "horizons_request_duration_seconds",
			Help:      "Duration of a single Horizons API request.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}),
		AcquisitionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "horoscope",
			Name:      "record_acquisition_duration_seconds",
			Help:      "Duration of a full nine-body record acquisition.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		HoroscopesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "horoscope",
			Name:      "horoscopes_generated_total",
			Help:      "Total horoscope results computed.",
		}),
	}
}

// NewMetrics creates the pipeline metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.BodyFetches,
		m.RecordCache,
		m.HorizonsDuration,
		m.AcquisitionDuration,
		m.HoroscopesGenerated,
	)
	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry,
// avoiding "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
