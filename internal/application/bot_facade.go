package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain"
	"github.com/fqrmix/what-is-the-price-now/internal/domain/model"
	"github.com/fqrmix/what-is-the-price-now/internal/usecase"
)

// Reply is what the transport should send back for one inbound update.
type Reply struct {
	Text string
	// Menu asks the transport to attach the main reply keyboard.
	Menu bool
	// BackButton asks for a keyboard with only "Back to menu", used
	// mid-flow.
	BackButton bool
	// Subscriptions, when set, are rendered as a list with per-item
	// delete buttons.
	Subscriptions []*model.Subscription
}

// BotFacade composes usecases into the bot's surface. It runs the
// conversation engine on every message and executes whatever action the
// engine emits, so the transport only converts updates to calls and
// replies to messages.
type BotFacade struct {
	userUC *usecase.UserUseCase
	subUC  *usecase.SubscriptionUseCase
	convUC *usecase.ConversationUseCase
	fbUC   *usecase.FeedbackUseCase
	log    *zerolog.Logger
}

func NewBotFacade(
	userUC *usecase.UserUseCase,
	subUC *usecase.SubscriptionUseCase,
	convUC *usecase.ConversationUseCase,
	fbUC *usecase.FeedbackUseCase,
	logger *zerolog.Logger,
) *BotFacade {
	facadeLog := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		userUC: userUC,
		subUC:  subUC,
		convUC: convUC,
		fbUC:   fbUC,
		log:    &facadeLog,
	}
}

// OnMessage processes one text message from a user.
func (b *BotFacade) OnMessage(ctx context.Context, userID int64, name, text string) Reply {
	user, err := b.userUC.RegisterIfAbsent(ctx, userID, name)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("register user failed")
		return Reply{Text: textGenericError, Menu: true}
	}
	action := b.convUC.OnMessage(ctx, user, text)
	return b.execute(ctx, user, action)
}

// OnDeleteCallback processes a per-item delete button press.
func (b *BotFacade) OnDeleteCallback(ctx context.Context, userID int64, name, subscriptionID string) Reply {
	user, err := b.userUC.RegisterIfAbsent(ctx, userID, name)
	if err != nil {
		b.log.Error().Err(err).Int64("user_id", userID).Msg("register user failed")
		return Reply{Text: textGenericError, Menu: true}
	}
	action := b.convUC.OnDelete(user, subscriptionID)
	return b.execute(ctx, user, action)
}

// OnStartup re-arms a timer for every stored subscription. Checks whose
// stored time already passed while the process was down fire right away.
func (b *BotFacade) OnStartup(ctx context.Context) error {
	return b.subUC.RearmAll(ctx)
}

func (b *BotFacade) execute(ctx context.Context, user *model.User, action usecase.Action) Reply {
	switch action.Kind {
	case usecase.ActionShowMenu:
		return Reply{Text: textMenu, Menu: true}

	case usecase.ActionPromptNotifyTime:
		return Reply{Text: textPromptTime, BackButton: true}

	case usecase.ActionPromptLink:
		return Reply{Text: textPromptLink, BackButton: true}

	case usecase.ActionPromptFeedback:
		return Reply{Text: textPromptFeedback, BackButton: true}

	case usecase.ActionSetNotifyTime:
		if _, err := b.userUC.SetNotifyTime(ctx, user.ID, action.NotifyTime); err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("set notify time failed")
			return Reply{Text: textGenericError, Menu: true}
		}
		return Reply{Text: textTimeSaved, BackButton: true}

	case usecase.ActionChangeNotifyTime:
		if _, err := b.userUC.SetNotifyTime(ctx, user.ID, action.NotifyTime); err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("set notify time failed")
			return Reply{Text: textGenericError, Menu: true}
		}
		if err := b.subUC.RescheduleAll(ctx, user.ID, action.NotifyTime); err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("reschedule after time change failed")
		}
		return Reply{Text: fmt.Sprintf(textTimeChanged, action.NotifyTime.String()), Menu: true}

	case usecase.ActionCreateSubscription:
		return b.createSubscription(ctx, user, action.URL)

	case usecase.ActionDeleteSubscription:
		sub, err := b.subUC.Delete(ctx, user.ID, action.SubscriptionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Reply{Text: textGenericError, Menu: true}
			}
			b.log.Error().Err(err).Str("subscription_id", action.SubscriptionID).Msg("delete failed")
			return Reply{Text: textGenericError, Menu: true}
		}
		return Reply{Text: fmt.Sprintf(textDeleted, sub.Article.Name), Menu: true}

	case usecase.ActionSubmitFeedback:
		if err := b.fbUC.Submit(ctx, user.ID, action.Text); err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("store feedback failed")
			return Reply{Text: textGenericError, Menu: true}
		}
		return Reply{Text: textFeedbackThanks, Menu: true}

	case usecase.ActionListSubscriptions:
		subs, err := b.subUC.ListByUser(ctx, user.ID)
		if err != nil {
			b.log.Error().Err(err).Int64("user_id", user.ID).Msg("list subscriptions failed")
			return Reply{Text: textGenericError, Menu: true}
		}
		if len(subs) == 0 {
			return Reply{Text: textListEmpty, Menu: true}
		}
		return Reply{Text: textListHeader, Subscriptions: subs, Menu: true}

	case usecase.ActionCheckNow:
		return b.checkNow(ctx, user)

	case usecase.ActionSupportProject:
		return Reply{Text: textSupportProject, Menu: true}

	case usecase.ActionCapacityError:
		return Reply{Text: fmt.Sprintf(textCapacityError, model.MaxSubscriptionsPerUser), Menu: true}

	case usecase.ActionTimeFormatError:
		return Reply{Text: textTimeFormatError, BackButton: true}

	case usecase.ActionURLError:
		return Reply{Text: textURLError, BackButton: true}

	case usecase.ActionUnsupportedShop:
		return Reply{Text: textUnsupported, BackButton: true}

	default:
		return Reply{Text: textMenu, Menu: true}
	}
}

func (b *BotFacade) createSubscription(ctx context.Context, user *model.User, rawURL string) Reply {
	sub, err := b.subUC.Create(ctx, user.ID, rawURL)
	switch {
	case err == nil:
		return Reply{
			Text: fmt.Sprintf(textCreated, sub.Article.Name, sub.Article.Price.String()),
			Menu: true,
		}
	case errors.Is(err, domain.ErrSubscriptionCap):
		return Reply{Text: fmt.Sprintf(textCapacityError, model.MaxSubscriptionsPerUser), Menu: true}
	case errors.Is(err, domain.ErrMalformedURL):
		return Reply{Text: textURLError, BackButton: true}
	case errors.Is(err, domain.ErrUnsupportedShop):
		return Reply{Text: textUnsupported, BackButton: true}
	case errors.Is(err, domain.ErrNoNotifyTime):
		return Reply{Text: textPromptTime, BackButton: true}
	default:
		b.log.Warn().Err(err).Int64("user_id", user.ID).Str("url", rawURL).Msg("create subscription failed")
		return Reply{Text: textFetchFailed, Menu: true}
	}
}

func (b *BotFacade) checkNow(ctx context.Context, user *model.User) Reply {
	fired, err := b.subUC.CheckNow(ctx, user.ID)
	switch {
	case errors.Is(err, domain.ErrCheckTooSoon):
		return Reply{
			Text: fmt.Sprintf(textCheckTooSoon, string(user.Tariff), user.Tariff.CheckInterval()),
			Menu: true,
		}
	case err != nil:
		b.log.Error().Err(err).Int64("user_id", user.ID).Msg("manual check failed")
		return Reply{Text: textGenericError, Menu: true}
	case fired == 0:
		return Reply{Text: textListEmpty, Menu: true}
	default:
		return Reply{Text: fmt.Sprintf(textCheckStarted, fired), Menu: true}
	}
}
