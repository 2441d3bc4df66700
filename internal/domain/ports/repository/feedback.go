package repository

import (
	"context"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
)

type FeedbackRepository interface {
	Save(ctx context.Context, f *model.Feedback) error
}
