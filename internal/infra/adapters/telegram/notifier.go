package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/fqrmix/what-is-the-price-now/internal/domain/ports/adapter"
)

var _ adapter.NotificationSink = (*Notifier)(nil)

// Notifier delivers scheduler-driven messages (price drops, fetch
// failures) straight to the chat. User id and chat id are the same
// thing for this bot.
type Notifier struct {
	bot *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewNotifier(bot *tgbotapi.BotAPI, logger *zerolog.Logger) *Notifier {
	nLog := logger.With().Str("component", "TelegramNotifier").Logger()
	return &Notifier{bot: bot, log: &nLog}
}

func (n *Notifier) Send(ctx context.Context, userID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(userID, text)
	msg.DisableWebPagePreview = true
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Int64("user_id", userID).Msg("notification send failed")
		return err
	}
	return nil
}
