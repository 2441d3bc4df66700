package adapter

import "context"

// NotificationSink delivers a plain text message to a user. Delivery is
// fire-and-forget from the core's perspective; implementations log their
// own failures.
type NotificationSink interface {
	Send(ctx context.Context, userID int64, text string) error
}
