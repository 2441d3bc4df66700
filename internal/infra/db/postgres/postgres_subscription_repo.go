package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subscriptionColumns = `id, user_id, article_name, article_price, article_shop, article_url, created_at, next_execution_at`

func (r *subscriptionRepo) Create(ctx context.Context, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (` + subscriptionColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.pool.Exec(ctx, q,
		s.ID, s.UserID,
		s.Article.Name, s.Article.Price, string(s.Article.Shop), s.Article.URL,
		s.CreatedAt, s.NextExecutionAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("postgres: create subscription %s: %w", s.ID, err)
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE id = $1;`
	return scanSubscription(r.pool.QueryRow(ctx, q, id))
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, userID int64) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 WHERE user_id = $1
 ORDER BY created_at ASC;`

	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list subscriptions for user %d: %w", userID, err)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func (r *subscriptionRepo) ListAll(ctx context.Context) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subscriptionColumns + `
  FROM subscriptions
 ORDER BY next_execution_at ASC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("postgres: list all subscriptions: %w", err)
	}
	defer rows.Close()
	return collectSubscriptions(rows)
}

func (r *subscriptionRepo) CountByUser(ctx context.Context, userID int64) (int, error) {
	const q = `SELECT COUNT(*) FROM subscriptions WHERE user_id = $1;`
	var n int
	if err := r.pool.QueryRow(ctx, q, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count subscriptions for user %d: %w", userID, err)
	}
	return n, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, s *model.Subscription) error {
	const q = `
UPDATE subscriptions
   SET article_name      = $2,
       article_price     = $3,
       article_shop      = $4,
       article_url       = $5,
       next_execution_at = $6
 WHERE id = $1;`

	tag, err := r.pool.Exec(ctx, q,
		s.ID,
		s.Article.Name, s.Article.Price, string(s.Article.Shop), s.Article.URL,
		s.NextExecutionAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: update subscription %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *subscriptionRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM subscriptions WHERE id = $1;`
	tag, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("postgres: delete subscription %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var (
		s    model.Subscription
		shop string
	)
	err := row.Scan(
		&s.ID, &s.UserID,
		&s.Article.Name, &s.Article.Price, &shop, &s.Article.URL,
		&s.CreatedAt, &s.NextExecutionAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: scan subscription: %w", domain.ErrReadDatabaseRow)
	}
	s.Article.Shop = model.ShopID(shop)
	return &s, nil
}

func collectSubscriptions(rows pgx.Rows) ([]*model.Subscription, error) {
	var out []*model.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate subscriptions: %w", domain.ErrReadDatabaseRow)
	}
	return out, nil
}
