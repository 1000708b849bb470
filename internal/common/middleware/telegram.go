package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	apperrors "gift-market-backend/internal/common/errors"
	"gift-market-backend/internal/common/logger"
)

const (
	InitDataHeader = "X-Telegram-Init-Data"
	telegramIDKey  = "telegram_id"
)

// ParseInitData validates Mini App init data against the bot token and
// returns the Telegram user id it carries.
func ParseInitData(raw, botToken string, ttl time.Duration) (string, error) {
	if botToken == "" {
		return "", apperrors.New(apperrors.ErrCodeInternal, "Server configuration error").
			WithDetail("reason", "bot token not configured")
	}
	if err := initdata.Validate(raw, botToken, ttl); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "Invalid init data")
	}

	parsed, err := initdata.Parse(raw)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeValidation, "Failed to parse init data")
	}
	if parsed.User.ID == 0 {
		return "", apperrors.NewUnauthorizedError("Init data carries no user")
	}
	return strconv.FormatInt(parsed.User.ID, 10), nil
}

// TelegramInitData authenticates the caller from the init data header when
// it is present. Requests without the header pass through untouched so the
// handler can fall back to an explicit telegramId.
func TelegramInitData(botToken string, ttl time.Duration, debugMode bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			c.Next()
			return
		}

		id, err := ParseInitData(raw, botToken, ttl)
		if err != nil {
			Abort(c, err, debugMode)
			return
		}

		logger.Debug().Str("telegram_id", id).Msg("Init data validated")
		c.Set(telegramIDKey, id)
		c.Next()
	}
}

// TelegramIDFrom returns the user id set by TelegramInitData.
func TelegramIDFrom(c *gin.Context) (string, bool) {
	v, ok := c.Get(telegramIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}
