package notify

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramNotifier mirrors operator notifications into an admin chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	if token == "" || chatID == 0 {
		logger.Warn("telegram bot token or chat id is empty, notifications mirror disabled")
		return &TelegramNotifier{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *TelegramNotifier) Notify(ctx context.Context, n Notification) {
	text := fmt.Sprintf("%s %s\n%s", kindPrefix(n.Kind), n.Title, n.Text)
	go t.send(context.WithoutCancel(ctx), text)
}

func kindPrefix(k Kind) string {
	switch k {
	case KindSuccess:
		return "[OK]"
	case KindError:
		return "[ERROR]"
	default:
		return "[INFO]"
	}
}

func (t *TelegramNotifier) send(ctx context.Context, text string) {
	if t.bot == nil {
		t.logger.Debug("telegram notification skipped (bot disabled)", "text", text)
		return
	}

	if err := ctx.Err(); err != nil {
		t.logger.Debug("telegram notification skipped (context cancelled)", "chat_id", t.chatID)
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error("failed to send telegram notification",
			"chat_id", t.chatID,
			"error", err,
		)
	}
}
