package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrOperationFailed  = errors.New("operation failed")
	ErrReadDatabaseRow  = errors.New("failed to read database row")
	ErrNoNotifyTime     = errors.New("user has no notify time configured")
	ErrSubscriptionCap  = errors.New("subscription limit reached")
	ErrUnsupportedShop  = errors.New("shop is not supported")
	ErrMalformedURL     = errors.New("malformed product url")
	ErrSchedulerClosed  = errors.New("scheduler is shut down")
	ErrCheckTooSoon     = errors.New("manual check window not elapsed")
	ErrPriceUnavailable = errors.New("current price unavailable")
)
