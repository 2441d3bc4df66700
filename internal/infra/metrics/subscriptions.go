package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		subscriptionsCreatedTotal,
		subscriptionsDeletedTotal,
		subscriptionsActive,
	)
}

var (
	subscriptionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_created_total",
			Help: "Total number of subscriptions created through the intake flow.",
		},
	)

	subscriptionsDeletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_deleted_total",
			Help: "Total number of subscriptions deleted by users.",
		},
	)

	subscriptionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "subscriptions_active",
			Help: "Current number of tracked subscriptions.",
		},
	)
)

func IncSubscriptionsCreated() { subscriptionsCreatedTotal.Inc(); subscriptionsActive.Inc() }
func IncSubscriptionsDeleted() { subscriptionsDeletedTotal.Inc(); subscriptionsActive.Dec() }

func SetSubscriptionsActive(n int) { subscriptionsActive.Set(float64(n)) }
