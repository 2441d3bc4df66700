package model

import (
	"time"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
)

// MaxSubscriptionsPerUser caps how many products one user can track,
// regardless of tariff.
const MaxSubscriptionsPerUser = 4

// Subscription is a user's tracking registration for one article.
//
// Invariant: at most one armed scheduler timer exists per subscription id,
// and NextExecutionAt in storage reflects that timer's target.
type Subscription struct {
	ID              string // UUID
	UserID          int64
	Article         Article
	CreatedAt       time.Time
	NextExecutionAt time.Time
}

func NewSubscription(id string, userID int64, article Article, nextExecutionAt time.Time) (*Subscription, error) {
	if id == "" || userID <= 0 || article.URL == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		ID:              id,
		UserID:          userID,
		Article:         article,
		CreatedAt:       time.Now(),
		NextExecutionAt: nextExecutionAt,
	}, nil
}
