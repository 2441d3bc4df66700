package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		priceChecksTotal,
		priceDropsTotal,
		fetchFailuresTotal,
	)
}

var (
	priceChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_checks_total",
			Help: "Check cycles by outcome (drop/unchanged/fetch_error/gone).",
		},
		[]string{"outcome"},
	)

	priceDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "price_drops_total",
			Help: "Total number of price-drop notifications sent.",
		},
	)

	fetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_fetch_failures_total",
			Help: "Failed storefront fetches per shop.",
		},
		[]string{"shop"},
	)
)

func IncPriceCheck(outcome string) { priceChecksTotal.WithLabelValues(outcome).Inc() }
func IncPriceDrop()                { priceDropsTotal.Inc() }

func IncFetchFailure(shop string) { fetchFailuresTotal.WithLabelValues(shop).Inc() }
