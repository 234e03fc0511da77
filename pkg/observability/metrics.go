package observability

import (
	"context"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the decode collectors.
type Metrics struct {
	Decodes  *prometheus.CounterVec
	Duration prometheus.Histogram
	Segments prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Decodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tuerulebase_decode_total",
				Help: "Total number of decode calls by outcome",
			},
			[]string{"outcome"},
		),
		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tuerulebase_decode_duration_seconds",
				Help:    "Duration of decode calls",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
		Segments: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tuerulebase_decode_segments",
				Help:    "Number of segments in successful decodes",
				Buckets: prometheus.LinearBuckets(1, 1, 12),
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Decodes, m.Duration, m.Segments} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns decode hooks that record every event, then call next
// (which may be nil).
func (m *Metrics) Hooks(next domain.DecodeHooks) domain.DecodeHooks {
	return domain.DecodeHooks{
		OnDecode: func(ctx context.Context, e *domain.DecodeEvent) {
			m.Decodes.WithLabelValues(string(e.Outcome)).Inc()
			m.Duration.Observe(e.Duration.Seconds())
			if e.Outcome == domain.OutcomeOK {
				m.Segments.Observe(float64(len(e.Segments)))
			}
			if next.OnDecode != nil {
				next.OnDecode(ctx, e)
			}
		},
	}
}
