package sampler

import (
	"github.com/prometheus/client_golang/prometheus"
)

const MetricPrefix = "tierprobe_"

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics records per-trial outcomes and latencies. A nil *Metrics records nothing.
type Metrics struct {
	trials        *prometheus.CounterVec
	trialDuration prometheus.Histogram
}

// NewMetrics creates the sampler metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricPrefix + "trials_total",
				Help: "Number of executions of the tier selection query, by outcome.",
			},
			[]string{"outcome"},
		),
		trialDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricPrefix + "trial_duration_seconds",
				Help:    "Round-trip time of one execution of the tier selection query.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
			},
		),
	}
	for _, c := range []prometheus.Collector{m.trials, m.trialDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordTrial(seconds float64, err error) {
	if m == nil {
		return
	}
	m.trialDuration.Observe(seconds)
	if err != nil {
		m.trials.WithLabelValues(outcomeFailure).Inc()
	} else {
		m.trials.WithLabelValues(outcomeSuccess).Inc()
	}
}
