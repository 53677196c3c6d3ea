// Package metrics exposes the Prometheus counters the filter engine emits.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BlocksTotal counts a block landing from FilterA/B/W, by filter and
	// the visibility it was created with.
	BlocksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_blocks_total",
			Help: "Total number of blocks placed by FilterA/B/W.",
		},
		[]string{"filter", "visibility"},
	)

	// EscalationsTotal counts a Z-filter extending an already-active block.
	EscalationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_escalations_total",
			Help: "Total number of block extensions applied by the Z filter family.",
		},
		[]string{"filter", "cadence"},
	)

	// WhitelistPromotionsTotal counts successful logins promoting a pair
	// to the whitelist.
	WhitelistPromotionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentry_whitelist_promotions_total",
			Help: "Total number of (address, account) pairs promoted to the whitelist.",
		},
	)

	// StoreErrorsTotal counts store failures swallowed by the fail-open
	// adapter.
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentry_store_errors_total",
			Help: "Total number of store errors swallowed by the fail-open adapter.",
		},
		[]string{"op"},
	)
)

// Register registers all sentry metrics on the given registerer. Call once
// at process startup; registering twice on the default registerer panics,
// same as prometheus.MustRegister anywhere else.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(BlocksTotal, EscalationsTotal, WhitelistPromotionsTotal, StoreErrorsTotal)
}
