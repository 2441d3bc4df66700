package repository

import (
	"context"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

// SubscriptionRepository is the port for durable subscription records,
// the source of truth for the stored price and the next check time.
type SubscriptionRepository interface {
	Create(ctx context.Context, s *model.Subscription) error
	FindByID(ctx context.Context, id string) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Subscription, error)
	ListAll(ctx context.Context) ([]*model.Subscription, error)
	CountByUser(ctx context.Context, userID int64) (int, error)
	Update(ctx context.Context, s *model.Subscription) error
	Delete(ctx context.Context, id string) error
}
