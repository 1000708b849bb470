package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	tgmodels "github.com/go-telegram/bot/models"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/middleware"
)

// SecretHeader carries the secret_token given to setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler processes one Telegram update.
type UpdateHandler interface {
	Handle(ctx context.Context, update *tgmodels.Update) error
}

type WebhookHandler struct {
	updates UpdateHandler
	secret  string
}

func NewWebhookHandler(updates UpdateHandler, secret string) *WebhookHandler {
	return &WebhookHandler{updates: updates, secret: secret}
}

func (h *WebhookHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/telegram/webhook", h.webhook)
}

// @Summary Telegram webhook
// @Description Receives Telegram updates. Always answers {ok:true} so Telegram never retries.
// @Tags telegram
// @Accept json
// @Produce json
// @Param X-Telegram-Bot-Api-Secret-Token header string false "Webhook secret"
// @Success 200 {object} map[string]bool
// @Router /telegram/webhook [post]
func (h *WebhookHandler) webhook(c *gin.Context) {
	defer c.JSON(http.StatusOK, gin.H{"ok": true})

	log := logger.Component("webhook").With().Str("request_id", middleware.RequestIDFrom(c)).Logger()

	if h.secret != "" {
		got := c.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			log.Warn().Str("client_ip", c.ClientIP()).Msg("Webhook secret mismatch, update dropped")
			return
		}
	}

	var update tgmodels.Update
	if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
		log.Warn().Err(err).Msg("Malformed update")
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Int64("update_id", update.ID).
				Interface("panic", rec).
				Str("stack", string(debug.Stack())).
				Msg("Panic while handling update")
		}
	}()

	if err := h.updates.Handle(c.Request.Context(), &update); err != nil {
		log.Error().Err(err).Int64("update_id", update.ID).Msg("Failed to handle update")
	}
}
