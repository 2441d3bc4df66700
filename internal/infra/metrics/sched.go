package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		timersArmed,
		timerChainsDeadTotal,
		scheduleRetriesTotal,
	)
}

var (
	timersArmed = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_timers_armed",
			Help: "Number of currently armed subscription timers.",
		},
	)

	// A dead chain means a subscription stopped re-arming itself and needs
	// external attention; it never crashes the scheduler.
	timerChainsDeadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_timer_chains_dead_total",
			Help: "Subscription timer chains that went dark (callback panic or exhausted re-arm retries).",
		},
	)

	scheduleRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_reschedule_retries_total",
			Help: "Retries of Schedule calls after a scheduling error.",
		},
	)
)

func SetTimersArmed(n int)    { timersArmed.Set(float64(n)) }
func IncTimerChainDead()      { timerChainsDeadTotal.Inc() }
func IncScheduleRetry()       { scheduleRetriesTotal.Inc() }
