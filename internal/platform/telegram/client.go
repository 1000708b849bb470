package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"gift-market-backend/internal/common/logger"
)

// Messenger is the outbound part of the Bot API the bot router needs.
// *bot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerInlineQuery(ctx context.Context, params *bot.AnswerInlineQueryParams) (bool, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	GetMe(ctx context.Context) (*models.User, error)
}

var createBot = func(token string, options ...bot.Option) (*bot.Bot, error) {
	return bot.New(token, options...)
}

// New returns a Bot API client for token. Updates arrive through the
// webhook, so the client never polls. An empty token yields a messenger
// that only logs.
func New(token string) (Messenger, error) {
	if token == "" {
		logger.Warn().Msg("BOT_TOKEN is empty, outbound Telegram calls are disabled")
		return Noop{}, nil
	}

	b, err := createBot(token, bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return b, nil
}

// RegisterWebhook points Telegram at url. secret is echoed back by Telegram
// in the X-Telegram-Bot-Api-Secret-Token header.
func RegisterWebhook(ctx context.Context, m Messenger, url, secret string) error {
	b, ok := m.(*bot.Bot)
	if !ok {
		return nil
	}
	_, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		SecretToken:    secret,
		AllowedUpdates: []string{"message", "inline_query", "callback_query"},
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

// Noop drops every call. Used when no bot token is configured.
type Noop struct{}

func (Noop) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	logger.Debug().Interface("chat_id", params.ChatID).Msg("Telegram disabled, message dropped")
	return &models.Message{}, nil
}

func (Noop) AnswerInlineQuery(context.Context, *bot.AnswerInlineQueryParams) (bool, error) {
	return true, nil
}

func (Noop) AnswerCallbackQuery(context.Context, *bot.AnswerCallbackQueryParams) (bool, error) {
	return true, nil
}

func (Noop) GetMe(context.Context) (*models.User, error) {
	return &models.User{}, nil
}

// Username resolves the bot's @username once, preferring the configured
// value and falling back to getMe.
type Username struct {
	messenger Messenger
	fallback  string

	mu   sync.Mutex
	name string
}

func NewUsername(m Messenger, configured, fallback string) *Username {
	return &Username{messenger: m, name: configured, fallback: fallback}
}

func (u *Username) Get(ctx context.Context) string {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.name != "" {
		return u.name
	}
	me, err := u.messenger.GetMe(ctx)
	if err != nil || me == nil || me.Username == "" {
		if err != nil {
			logger.Warn().Err(err).Msg("getMe failed, using fallback bot username")
		}
		return u.fallback
	}
	u.name = me.Username
	return u.name
}
