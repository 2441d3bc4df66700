package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/repository"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/metrics"
)

const (
	// retryDelay re-arms a subscription whose check hit a transient
	// storage failure before the next anchor could be computed.
	retryDelay = 5 * time.Minute

	scheduleAttempts = 3
)

// CheckUseCase runs one check-and-notify cycle per timer fire and owns
// the re-arming of the timer afterwards. Its Run method is the callback
// every subscription timer is armed with.
type CheckUseCase struct {
	subs  repository.SubscriptionRepository
	users repository.UserRepository
	shops adapter.ShopDispatch
	sink  adapter.NotificationSink
	sched adapter.TimerScheduler
	log   *zerolog.Logger

	now func() time.Time
}

func NewCheckUseCase(
	subs repository.SubscriptionRepository,
	users repository.UserRepository,
	shops adapter.ShopDispatch,
	sink adapter.NotificationSink,
	sched adapter.TimerScheduler,
	logger *zerolog.Logger,
) *CheckUseCase {
	ucLog := logger.With().Str("component", "CheckUseCase").Logger()
	return &CheckUseCase{
		subs:  subs,
		users: users,
		shops: shops,
		sink:  sink,
		sched: sched,
		log:   &ucLog,
		now:   time.Now,
	}
}

// Run executes the cycle for one subscription:
//
//  1. reload the subscription from storage; a record that is gone ends
//     the timer chain for good,
//  2. fetch the current price from the storefront,
//  3. on a strictly lower price, notify the user and persist the new
//     price; an equal or higher price changes nothing,
//  4. compute the next anchor from the user's notify time and re-arm.
//
// Failures in steps 2-4 never kill the chain: the timer is re-armed
// regardless, so one bad fetch or one lost DB write only skips a day.
func (uc *CheckUseCase) Run(ctx context.Context, subscriptionID string) {
	sub, err := uc.subs.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted between arming and firing. Terminal, nothing to re-arm.
			metrics.IncPriceCheck("gone")
			uc.log.Debug().Str("subscription_id", subscriptionID).Msg("subscription gone, chain ends")
			return
		}
		uc.log.Error().Err(err).Str("subscription_id", subscriptionID).Msg("load subscription failed, retrying later")
		uc.reschedule(subscriptionID, uc.now().Add(retryDelay))
		return
	}

	if changed, old := uc.checkPrice(ctx, sub); changed {
		uc.notifyDrop(ctx, sub, old)
	}

	// One write covers both the possibly-updated price and the next anchor.
	next := uc.nextExecution(ctx, sub)
	sub.NextExecutionAt = next
	if err := uc.subs.Update(ctx, sub); err != nil {
		uc.log.Warn().Err(err).Str("subscription_id", sub.ID).Msg("persist subscription failed")
	}
	uc.reschedule(sub.ID, next)
}

// checkPrice fetches the current snapshot and compares it to the stored
// price. It mutates sub in place on a drop and reports the old price.
func (uc *CheckUseCase) checkPrice(ctx context.Context, sub *model.Subscription) (changed bool, old model.Article) {
	fetched, err := uc.shops.Fetch(ctx, sub.Article.Shop, sub.Article.URL)
	if err != nil {
		metrics.IncPriceCheck("fetch_error")
		metrics.IncFetchFailure(string(sub.Article.Shop))
		uc.log.Warn().Err(err).
			Str("subscription_id", sub.ID).
			Str("shop", string(sub.Article.Shop)).
			Msg("price fetch failed")
		text := fmt.Sprintf("Could not check the price of %s right now, will try again next time.\n%s",
			sub.Article.Name, sub.Article.URL)
		if err := uc.sink.Send(ctx, sub.UserID, text); err != nil {
			uc.log.Warn().Err(err).Int64("user_id", sub.UserID).Msg("unavailable notification failed")
		}
		return false, old
	}

	if !fetched.Price.LessThan(sub.Article.Price) {
		metrics.IncPriceCheck("unchanged")
		uc.log.Debug().
			Str("subscription_id", sub.ID).
			Str("price", fetched.Price.String()).
			Msg("price not lower, nothing to do")
		return false, old
	}

	metrics.IncPriceCheck("drop")
	metrics.IncPriceDrop()
	old = sub.Article
	sub.Article.Price = fetched.Price
	if fetched.Name != "" {
		sub.Article.Name = fetched.Name
	}
	return true, old
}

func (uc *CheckUseCase) notifyDrop(ctx context.Context, sub *model.Subscription, old model.Article) {
	text := fmt.Sprintf(
		"Price drop!\n%s\n%s → %s\n%s",
		sub.Article.Name, old.Price.String(), sub.Article.Price.String(), sub.Article.URL,
	)
	if err := uc.sink.Send(ctx, sub.UserID, text); err != nil {
		uc.log.Warn().Err(err).Int64("user_id", sub.UserID).Msg("drop notification failed")
	}
}

// nextExecution anchors the next fire to the owner's notify time. A user
// record that is unreadable or has no anchor falls back to 24h from now
// so the chain stays alive.
func (uc *CheckUseCase) nextExecution(ctx context.Context, sub *model.Subscription) time.Time {
	now := uc.now()
	user, err := uc.users.FindByID(ctx, sub.UserID)
	if err != nil || user.NotifyTime == nil {
		uc.log.Warn().Err(err).Int64("user_id", sub.UserID).Msg("notify time unavailable, using 24h fallback")
		return now.Add(24 * time.Hour)
	}
	return user.NotifyTime.Next(now)
}

func (uc *CheckUseCase) reschedule(subscriptionID string, at time.Time) {
	var err error
	for i := 0; i < scheduleAttempts; i++ {
		if err = uc.sched.Schedule(subscriptionID, at, uc.Run); err == nil {
			return
		}
		if errors.Is(err, domain.ErrSchedulerClosed) {
			return
		}
		metrics.IncScheduleRetry()
	}
	metrics.IncTimerChainDead()
	uc.log.Error().Err(err).Str("subscription_id", subscriptionID).Msg("re-arm failed, timer chain is dead")
}
