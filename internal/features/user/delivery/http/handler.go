package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "gift-market-backend/internal/common/errors"
	"gift-market-backend/internal/common/middleware"
	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
	"gift-market-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
	debug   bool
}

func NewUserHandler(service service.UserService, debug bool) *UserHandler {
	return &UserHandler{service: service, debug: debug}
}

func (h *UserHandler) RegisterRoutes(router gin.IRouter) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.GET("/:id", h.getUser)
	}
}

// @Summary Get current user profile
// @Description Returns the profile of the Mini App user identified by init data.
// @Tags users
// @Produce json
// @Param X-Telegram-Init-Data header string true "Telegram Mini App init data"
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	id, ok := middleware.TelegramIDFrom(c)
	if !ok {
		middleware.Abort(c, apperrors.NewUnauthorizedError("Telegram init data required"), h.debug)
		return
	}
	h.respond(c, giftmodels.TelegramID(id))
}

// @Summary Get user profile
// @Tags users
// @Produce json
// @Param id path string true "Telegram user id"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	id, err := giftmodels.ParseTelegramID(c.Param("id"))
	if err != nil {
		middleware.Abort(c, apperrors.NewValidationError("id", "Invalid telegram id"), h.debug)
		return
	}
	h.respond(c, id)
}

func (h *UserHandler) respond(c *gin.Context, id giftmodels.TelegramID) {
	profile, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			middleware.Abort(c, apperrors.NewNotFoundError("user", id.String()), h.debug)
			return
		}
		middleware.Abort(c, err, h.debug)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{Success: true, Profile: profile})
}
