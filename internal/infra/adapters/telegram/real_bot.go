package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/application"
	"github.com/fqrmix/what-is-the-price-now/internal/config"
	"github.com/fqrmix/what-is-the-price-now/internal/infra/metrics"
	red "github.com/fqrmix/what-is-the-price-now/internal/infra/redis"
	"github.com/fqrmix/what-is-the-price-now/internal/usecase"
)

// deleteCallbackPrefix carries the subscription id on per-item delete
// buttons.
const deleteCallbackPrefix = "delsub:"

// RealTelegramBotAdapter polls updates from Telegram and delegates every
// message to the BotFacade. Updates are fanned out to a worker pool
// keyed by chat id, so messages from one user are always handled in
// arrival order while different users run in parallel.
type RealTelegramBotAdapter struct {
	bot         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

// NewRealTelegramBotAdapter wraps an already-authenticated API client;
// the same client backs the Notifier so outbound traffic shares one
// connection pool.
func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	bot *tgbotapi.BotAPI,
	facade *application.BotFacade,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if bot == nil {
		return nil, errors.New("bot api is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}

	botLog := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		log:           &botLog,
		updateWorkers: workers,
	}, nil
}

// StartPolling blocks until the context is cancelled.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	// One queue per worker; routing by chat id keeps per-user order.
	queues := make([]chan tgbotapi.Update, r.updateWorkers)
	for i := range queues {
		queues[i] = make(chan tgbotapi.Update, 32)
		wg.Add(1)
		go func(id int, q <-chan tgbotapi.Update) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-q:
					r.handleUpdate(ctx, up)
				}
			}
		}(i, queues[i])
	}

	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			chatID, ok := updateChatID(up)
			if !ok {
				continue
			}
			idx := int(uint64(chatID) % uint64(r.updateWorkers))
			select {
			case queues[idx] <- up:
			case <-ctx.Done():
				wg.Wait()
				return ctx.Err()
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func updateChatID(up tgbotapi.Update) (int64, bool) {
	if up.CallbackQuery != nil && up.CallbackQuery.From != nil {
		return up.CallbackQuery.From.ID, true
	}
	if up.Message != nil && up.Message.From != nil {
		return up.Message.Chat.ID, true
	}
	return 0, false
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) {
	switch {
	case up.CallbackQuery != nil:
		metrics.IncUpdate("callback")
		r.handleCallback(ctx, up.CallbackQuery)
	case up.Message != nil && up.Message.From != nil:
		metrics.IncUpdate("message")
		r.handleMessage(ctx, up.Message)
	}
}

func (r *RealTelegramBotAdapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, "message"), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncRateLimited()
			r.send(chatID, "Too many messages, please slow down.", nil)
			return
		}
	}

	reply := r.facade.OnMessage(ctx, chatID, displayName(msg.From), msg.Text)
	r.deliver(chatID, reply)
}

func (r *RealTelegramBotAdapter) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops the spinner either way.
	if _, err := r.bot.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		r.log.Warn().Err(err).Msg("callback ack failed")
	}

	if !strings.HasPrefix(cb.Data, deleteCallbackPrefix) {
		return
	}
	subID := strings.TrimPrefix(cb.Data, deleteCallbackPrefix)
	chatID := cb.From.ID
	reply := r.facade.OnDeleteCallback(ctx, chatID, displayName(cb.From), subID)
	r.deliver(chatID, reply)
}

func (r *RealTelegramBotAdapter) deliver(chatID int64, reply application.Reply) {
	if len(reply.Subscriptions) > 0 {
		r.sendSubscriptionList(chatID, reply)
		return
	}
	r.send(chatID, reply.Text, keyboardFor(reply))
}

// sendSubscriptionList renders one message per tracked item with its own
// delete button, then the header text with the menu keyboard.
func (r *RealTelegramBotAdapter) sendSubscriptionList(chatID int64, reply application.Reply) {
	r.send(chatID, reply.Text, keyboardFor(reply))
	for _, sub := range reply.Subscriptions {
		text := fmt.Sprintf("%s\n%s\nNext check: %s\n%s",
			sub.Article.Name,
			sub.Article.Price.String(),
			sub.NextExecutionAt.Format("02.01 15:04"),
			sub.Article.URL,
		)
		markup := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Remove", deleteCallbackPrefix+sub.ID),
			),
		)
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ReplyMarkup = markup
		msg.DisableWebPagePreview = true
		if _, err := r.bot.Send(msg); err != nil {
			r.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send list item failed")
		}
	}
}

func (r *RealTelegramBotAdapter) send(chatID int64, text string, markup interface{}) {
	if text == "" {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	msg.DisableWebPagePreview = true
	if _, err := r.bot.Send(msg); err != nil {
		r.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func keyboardFor(reply application.Reply) interface{} {
	switch {
	case reply.Menu:
		return mainMenuKeyboard()
	case reply.BackButton:
		return backKeyboard()
	default:
		return nil
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(usecase.CmdAddItem),
			tgbotapi.NewKeyboardButton(usecase.CmdMyItems),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(usecase.CmdCheckNow),
			tgbotapi.NewKeyboardButton(usecase.CmdNotifySetup),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(usecase.CmdSupport),
			tgbotapi.NewKeyboardButton(usecase.CmdFeedback),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(usecase.CmdBackToMenu),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return "unknown"
	}
	if u.UserName != "" {
		return u.UserName
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return "unknown"
	}
	return name
}
