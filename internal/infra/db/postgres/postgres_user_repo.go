package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

// Upsert inserts the user or refreshes name, tariff and notify time.
// The id is the Telegram chat id, so conflicts mean "same user again".
func (r *userRepo) Upsert(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, name, tariff, notify_time)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
  SET name        = EXCLUDED.name,
      tariff      = EXCLUDED.tariff,
      notify_time = EXCLUDED.notify_time;`

	var notify *string
	if u.NotifyTime != nil {
		s := u.NotifyTime.String()
		notify = &s
	}
	if _, err := r.pool.Exec(ctx, q, u.ID, u.Name, string(u.Tariff), notify); err != nil {
		return fmt.Errorf("postgres: upsert user %d: %w", u.ID, err)
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, name, tariff, notify_time
  FROM users
 WHERE id = $1;`

	var (
		u      model.User
		tariff string
		notify *string
	)
	row := r.pool.QueryRow(ctx, q, id)
	if err := row.Scan(&u.ID, &u.Name, &tariff, &notify); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: query user %d: %w", id, err)
	}
	u.Tariff = model.Tariff(tariff)
	if notify != nil {
		tod, err := model.ParseTimeOfDay(*notify)
		if err != nil {
			return nil, fmt.Errorf("postgres: user %d has bad notify_time %q: %w", id, *notify, domain.ErrReadDatabaseRow)
		}
		u.NotifyTime = &tod
	}
	return &u, nil
}
