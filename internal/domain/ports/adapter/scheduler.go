package adapter

import (
	"context"
	"time"
)

// TimerCallback is the body invoked when a subscription timer fires. The
// callback owns recurrence: it must compute the next execution time and
// call Schedule again, the scheduler itself never re-arms anything.
type TimerCallback func(ctx context.Context, subscriptionID string)

// TimerScheduler maintains at most one armed one-shot timer per
// subscription id.
type TimerScheduler interface {
	// Schedule arms a timer for the subscription. A timer already armed
	// for the same id is cancelled first, atomically. A target in the
	// past fires immediately.
	Schedule(subscriptionID string, at time.Time, cb TimerCallback) error
	// Cancel drops any pending timer for the id. Cancelling an absent or
	// already-fired timer is a no-op.
	Cancel(subscriptionID string)
	// RunNow fires a pending timer immediately instead of waiting for its
	// target. Returns false when no timer is armed for the id.
	RunNow(subscriptionID string) bool
}
