package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequests counts calls to external collaborators by target and outcome.
	UpstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "move_portfolio_upstream_requests_total",
			Help: "Requests issued to external services (indexer, fullnode, quotes).",
		},
		[]string{"target", "outcome"},
	)

	// UpstreamDuration observes latency of upstream calls.
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "move_portfolio_upstream_duration_seconds",
			Help:    "Latency of upstream calls.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"},
	)

	// PriceRefreshes counts price cache refreshes by outcome.
	PriceRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "move_portfolio_price_refreshes_total",
			Help: "Price cache refresh attempts.",
		},
		[]string{"outcome"},
	)

	// RewardEventsSkipped counts reward events dropped for parse failures.
	RewardEventsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "move_portfolio_reward_events_skipped_total",
			Help: "Reward-claim events skipped due to malformed payloads.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, which indicates a wiring bug.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		UpstreamRequests,
		UpstreamDuration,
		PriceRefreshes,
		RewardEventsSkipped,
	)
}
