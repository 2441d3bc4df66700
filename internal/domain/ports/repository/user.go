package repository

import (
	"context"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

// UserRepository is the port for durable user records.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	Upsert(ctx context.Context, u *model.User) error
}
