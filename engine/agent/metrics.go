package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "reconchess"
const beliefSubsystem = "belief"

// Metrics exposes estimator activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Updates   *prometheus.CounterVec
	Collapses prometheus.Counter
	Survivors *prometheus.HistogramVec
	Fallbacks *prometheus.CounterVec
	Entropy   prometheus.Gauge
}

// NewMetrics registers the estimator metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Updates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: beliefSubsystem,
			Name:      "updates_total",
			Help:      "Evidence updates by evidence kind and resulting health",
		}, []string{"evidence", "health"}),
		Collapses: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: beliefSubsystem,
			Name:      "collapses_total",
			Help:      "Updates that eliminated every particle",
		}),
		Survivors: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: beliefSubsystem,
			Name:      "survivor_ratio",
			Help:      "Fraction of particles kept by a filter",
			Buckets:   []float64{0, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 1},
		}, []string{"evidence"}),
		Fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: beliefSubsystem,
			Name:      "fallbacks_total",
			Help:      "Particles that hit the retry budget, by stage",
		}, []string{"stage"}),
		Entropy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: beliefSubsystem,
			Name:      "mean_square_entropy_bits",
			Help:      "Mean per-square entropy of the ensemble after the last update",
		}),
	}
}

func (m *Metrics) observeUpdate(ev Evidence, h Health, kept, n int) {
	if m == nil {
		return
	}
	m.Updates.WithLabelValues(string(ev), h.String()).Inc()
	if h == Collapsed {
		m.Collapses.Inc()
	}
	if n > 0 {
		m.Survivors.WithLabelValues(string(ev)).Observe(float64(kept) / float64(n))
	}
}

func (m *Metrics) observeFallbacks(stage string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.Fallbacks.WithLabelValues(stage).Add(float64(count))
}

func (m *Metrics) observeEntropy(ps ParticleSet) {
	if m == nil {
		return
	}
	m.Entropy.Set(MeanEntropy(ps))
}
