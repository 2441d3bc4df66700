package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		updatesTotal,
		rateLimitedTotal,
	)
}

var (
	updatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Incoming Telegram updates by type (message/callback).",
		},
		[]string{"type"},
	)

	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limited_total",
			Help: "Updates rejected by the per-user rate limiter.",
		},
	)
)

func IncUpdate(kind string) { updatesTotal.WithLabelValues(kind).Inc() }
func IncRateLimited()       { rateLimitedTotal.Inc() }
