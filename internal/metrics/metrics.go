// Package metrics records per-run counters and writes them in the
// Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Locus outcomes.
const (
	Designed   = "designed"
	Empty      = "empty"
	Truncated  = "truncated"
	Malformed  = "malformed"
	Unresolved = "unresolved"
	Failed     = "failed"
)

// Metrics holds one run's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	loci          *prometheus.CounterVec
	pairs         prometheus.Counter
	genes         *prometheus.GaugeVec
	oracleSeconds prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		// loci counts design attempts by outcome
		loci: f.NewCounterVec(prometheus.CounterOpts{
			Name: "puppy_loci_total",
			Help: "Loci handed to the primer oracle, by outcome",
		}, []string{"outcome"}),
		pairs: f.NewCounter(prometheus.CounterOpts{
			Name: "puppy_primer_pairs_total",
			Help: "Primer pairs parsed from oracle output",
		}),
		genes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "puppy_candidate_genes",
			Help: "Classified candidate genes by bucket",
		}, []string{"bucket"}),
		oracleSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "puppy_oracle_duration_seconds",
			Help:    "Wall time of one oracle call",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}),
	}
}

func (m *Metrics) Locus(outcome string) {
	if m == nil {
		return
	}
	m.loci.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Pairs(n int) {
	if m == nil {
		return
	}
	m.pairs.Add(float64(n))
}

// Genes sets the size of a candidate bucket ("unique", "ideal", ...).
func (m *Metrics) Genes(bucket string, n int) {
	if m == nil {
		return
	}
	m.genes.WithLabelValues(bucket).Set(float64(n))
}

func (m *Metrics) ObserveOracle(d time.Duration) {
	if m == nil {
		return
	}
	m.oracleSeconds.Observe(d.Seconds())
}

// WriteFile writes the registry in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
