package adapter

import (
	"context"
	"time"
)

// ManualCheckLimiter gates the on-demand price check. The window comes
// from the user's tariff, the counter lives outside the process so the
// gate survives restarts.
type ManualCheckLimiter interface {
	AllowManualCheck(ctx context.Context, userID int64, window time.Duration) (bool, error)
}
