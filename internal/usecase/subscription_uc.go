package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/metrics"
)

// SubscriptionUseCase implements the subscription lifecycle: create,
// delete, list, manual checks and timer (re)arming. The cycle callback
// is injected so this package never depends on the check implementation.
type SubscriptionUseCase struct {
	subs    repository.SubscriptionRepository
	users   repository.UserRepository
	shops   adapter.ShopDispatch
	sched   adapter.TimerScheduler
	limiter adapter.ManualCheckLimiter
	cycle   adapter.TimerCallback
	log     *zerolog.Logger

	now func() time.Time
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	shops adapter.ShopDispatch,
	sched adapter.TimerScheduler,
	limiter adapter.ManualCheckLimiter,
	cycle adapter.TimerCallback,
	logger *zerolog.Logger,
) *SubscriptionUseCase {
	ucLog := logger.With().Str("component", "SubscriptionUseCase").Logger()
	return &SubscriptionUseCase{
		subs:    subs,
		users:   users,
		shops:   shops,
		sched:   sched,
		limiter: limiter,
		cycle:   cycle,
		log:     &ucLog,
		now:     time.Now,
	}
}

// Create registers a new tracked article for the user.
// The current price is fetched up front and stored as the comparison
// base; the first scheduled check lands on the user's next notify time.
func (uc *SubscriptionUseCase) Create(ctx context.Context, userID int64, rawURL string) (*model.Subscription, error) {
	count, err := uc.subs.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if count >= model.MaxSubscriptionsPerUser {
		return nil, domain.ErrSubscriptionCap
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrMalformedURL, rawURL)
	}
	shop, ok := uc.shops.Resolve(rawURL)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedShop, parsed.Hostname())
	}

	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.NotifyTime == nil {
		return nil, domain.ErrNoNotifyTime
	}

	article, err := uc.shops.Fetch(ctx, shop, rawURL)
	if err != nil {
		return nil, err
	}

	next := user.NotifyTime.Next(uc.now())
	sub, err := model.NewSubscription(uuid.NewString(), userID, article, next)
	if err != nil {
		return nil, err
	}
	if err := uc.subs.Create(ctx, sub); err != nil {
		return nil, err
	}
	if err := uc.sched.Schedule(sub.ID, next, uc.cycle); err != nil {
		uc.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("arm timer for new subscription failed")
	}

	metrics.IncSubscriptionsCreated()
	uc.log.Info().
		Str("subscription_id", sub.ID).
		Int64("user_id", userID).
		Str("shop", string(shop)).
		Str("price", article.Price.String()).
		Msg("subscription created")
	return sub, nil
}

// Delete removes the user's subscription and disarms its timer first, so
// a fire cannot slip in between the two steps and resurrect the chain.
// The removed record is returned for the confirmation message.
func (uc *SubscriptionUseCase) Delete(ctx context.Context, userID int64, subscriptionID string) (*model.Subscription, error) {
	sub, err := uc.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.UserID != userID {
		return nil, domain.ErrNotFound
	}

	uc.sched.Cancel(subscriptionID)
	if err := uc.subs.Delete(ctx, subscriptionID); err != nil {
		return nil, err
	}

	metrics.IncSubscriptionsDeleted()
	uc.log.Info().Str("subscription_id", subscriptionID).Int64("user_id", userID).Msg("subscription deleted")
	return sub, nil
}

func (uc *SubscriptionUseCase) ListByUser(ctx context.Context, userID int64) ([]*model.Subscription, error) {
	return uc.subs.ListByUser(ctx, userID)
}

// RescheduleAll moves every timer of the user onto a new notify time. The
// date part of each stored next execution is kept, only the clock moves;
// a result that is no longer in the future rolls to the next day.
func (uc *SubscriptionUseCase) RescheduleAll(ctx context.Context, userID int64, at model.TimeOfDay) error {
	subs, err := uc.subs.ListByUser(ctx, userID)
	if err != nil {
		return err
	}

	now := uc.now()
	for _, sub := range subs {
		next := at.On(sub.NextExecutionAt)
		if !next.After(now) {
			next = at.Next(now)
		}
		sub.NextExecutionAt = next
		if err := uc.subs.Update(ctx, sub); err != nil {
			uc.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("persist rescheduled time failed")
		}
		if err := uc.sched.Schedule(sub.ID, next, uc.cycle); err != nil {
			uc.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("re-arm after reschedule failed")
		}
	}
	return nil
}

// CheckNow fires all of the user's timers immediately. Admission is one
// manual check per tariff window; the recurring schedule is untouched
// because firing consumes the armed timer and the cycle re-arms it.
func (uc *SubscriptionUseCase) CheckNow(ctx context.Context, userID int64) (int, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	allowed, err := uc.limiter.AllowManualCheck(ctx, userID, user.Tariff.CheckInterval())
	if err != nil {
		return 0, err
	}
	if !allowed {
		return 0, domain.ErrCheckTooSoon
	}

	subs, err := uc.subs.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	fired := 0
	for _, sub := range subs {
		if uc.sched.RunNow(sub.ID) {
			fired++
			continue
		}
		// No armed timer means the chain died somewhere; restart it.
		if err := uc.sched.Schedule(sub.ID, uc.now(), uc.cycle); err != nil {
			uc.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("restart timer chain failed")
			continue
		}
		fired++
	}
	return fired, nil
}

// RearmAll arms a timer for every stored subscription. Called once at
// startup; targets already in the past fire immediately, so checks
// missed while the process was down run right away.
func (uc *SubscriptionUseCase) RearmAll(ctx context.Context) error {
	subs, err := uc.subs.ListAll(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := uc.sched.Schedule(sub.ID, sub.NextExecutionAt, uc.cycle); err != nil {
			uc.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("re-arm at startup failed")
		}
	}
	metrics.SetSubscriptionsActive(len(subs))
	uc.log.Info().Int("count", len(subs)).Msg("subscription timers re-armed")
	return nil
}
