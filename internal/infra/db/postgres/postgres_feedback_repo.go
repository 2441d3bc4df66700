package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

var _ repository.FeedbackRepository = (*feedbackRepo)(nil)

type feedbackRepo struct {
	pool *pgxpool.Pool
}

func NewFeedbackRepo(pool *pgxpool.Pool) *feedbackRepo {
	return &feedbackRepo{pool: pool}
}

func (r *feedbackRepo) Save(ctx context.Context, f *model.Feedback) error {
	const q = `
INSERT INTO feedback_messages (id, user_id, message, created_at)
VALUES ($1, $2, $3, $4);`

	if _, err := r.pool.Exec(ctx, q, f.ID, f.UserID, f.Message, f.CreatedAt); err != nil {
		return fmt.Errorf("postgres: save feedback %s: %w", f.ID, err)
	}
	return nil
}
