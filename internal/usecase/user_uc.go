package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
)

// UserUseCase implements user registration and notification settings.
type UserUseCase struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, logger *zerolog.Logger) *UserUseCase {
	return &UserUseCase{users: users, log: logger}
}

// RegisterIfAbsent returns the stored user, creating a standard-tariff
// record on first contact. Every inbound update goes through here so the
// rest of the code can assume the user row exists.
func (uc *UserUseCase) RegisterIfAbsent(ctx context.Context, id int64, name string) (*model.User, error) {
	u, err := uc.users.FindByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	u, err = model.NewUser(id, name, model.TariffStandard)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", id).Str("name", name).Msg("registered new user")
	return u, nil
}

func (uc *UserUseCase) Get(ctx context.Context, id int64) (*model.User, error) {
	return uc.users.FindByID(ctx, id)
}

// SetNotifyTime stores the user's daily check anchor. It does not touch
// existing subscription timers; the caller decides whether to reschedule.
func (uc *UserUseCase) SetNotifyTime(ctx context.Context, id int64, at model.TimeOfDay) (*model.User, error) {
	u, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.NotifyTime = &at
	if err := uc.users.Upsert(ctx, u); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("user_id", id).Str("notify_time", at.String()).Msg("notify time updated")
	return u, nil
}
