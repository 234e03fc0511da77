// Package observability exports decode activity as Prometheus metrics.
//
// Metrics.Hooks plugs into the engine:
//
//	m, err := observability.NewMetrics(prometheus.DefaultRegisterer)
//	eng := tuerulebase.New(tuerulebase.WithHooks(m.Hooks(domain.DecodeHooks{})))
package observability
