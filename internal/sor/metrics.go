package sor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the router's Prometheus instruments.
type Metrics struct {
	Quotes         *prometheus.CounterVec
	Eliminations   prometheus.Counter
	Fetches        *prometheus.CounterVec
	CachedPools    prometheus.Gauge
	CachedBlock    prometheus.Gauge
	RoutingLatency prometheus.Histogram
}

// NewMetrics registers the instruments on reg. A nil reg keeps them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Quotes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sor_quotes_total",
				Help: "getSwaps calls by outcome",
			},
			[]string{"outcome"}, // routed, no_route, invalid, error
		),
		Eliminations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "sor_path_eliminations_total",
				Help: "Candidate paths dropped by pool math failures",
			},
		),
		Fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sor_pool_fetches_total",
				Help: "Pool cache fetches by kind and result",
			},
			[]string{"kind", "result"}, // full|enrichment, ok|error
		),
		CachedPools: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sor_cached_pools",
				Help: "Pools in the installed snapshot",
			},
		),
		CachedBlock: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sor_cached_block",
				Help: "Block of the installed snapshot, zero when latest",
			},
		),
		RoutingLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sor_routing_duration_seconds",
				Help:    "Time spent in path discovery and allocation",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
	}
}
