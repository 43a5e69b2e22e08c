package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pathakanu/jobMemo/internal/logger"
)

var log = logger.New("telegram")

type messageSender interface {
	Send(c tg.Chattable) (tg.Message, error)
}

// Client delivers notifications as Telegram messages. Recipients are chat ids,
// optionally written as "telegram:<id>".
type Client struct {
	bot messageSender
}

// New logs in with the bot token.
func New(token string) (*Client, error) {
	bot, err := tg.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Logged in")
	return &Client{bot: bot}, nil
}

// Send delivers body to the chat in to, formatted as telegram:<chatID>.
func (c *Client) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	chatID, err := parseChatID(to)
	if err != nil {
		return err
	}

	msg := tg.NewMessage(chatID, body)
	msg.DisableWebPagePreview = true
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send message: %w", err)
	}
	return nil
}

func parseChatID(to string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(to), "telegram:")
	if raw == "" {
		return 0, fmt.Errorf("recipient chat id missing")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}
	return id, nil
}
