// Package metrics exposes Prometheus collectors for simulation runs.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/geange/nfasim"
)

type Metrics struct {
	runs       *prometheus.CounterVec
	inputRunes prometheus.Histogram
	finalSize  prometheus.Histogram
	failures   *prometheus.CounterVec
	cache      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfasim_runs_total",
				Help: "Completed simulations by verdict",
			},
			[]string{"accepted"},
		),
		inputRunes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nfasim_input_symbols",
			Help:    "Number of symbols consumed per simulation",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
		finalSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nfasim_final_states",
			Help:    "Size of the active state-set after the last symbol",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfasim_failures_total",
				Help: "Rejected simulation requests by reason",
			},
			[]string{"reason"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nfasim_cache_lookups_total",
				Help: "Result cache lookups by outcome",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.runs, m.inputRunes, m.finalSize, m.failures, m.cache)
	return m
}

func (m *Metrics) ObserveRun(res *nfasim.Result) {
	m.runs.WithLabelValues(strconv.FormatBool(res.Accepted)).Inc()
	m.inputRunes.Observe(float64(len(res.Trace) - 1))
	m.finalSize.Observe(float64(len(res.Final())))
}

func (m *Metrics) ObserveFailure(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}
