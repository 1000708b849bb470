package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "gift-market-backend/internal/common/errors"
	"gift-market-backend/internal/common/middleware"
	"gift-market-backend/internal/common/validation"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/nft"
	"gift-market-backend/internal/features/gift/service"
)

// GiftService is what the handlers need from the gift flows.
type GiftService interface {
	AddGift(ctx context.Context, in service.AddGiftInput) (*service.AddResult, error)
	ClaimGift(ctx context.Context, in service.ClaimGiftInput) (*service.AddResult, error)
	DownloadGift(ctx context.Context, in service.DownloadGiftInput) (*service.AddResult, error)
	GiftExists(ctx context.Context, owner models.TelegramID, nftID string) (bool, error)
	UserGifts(ctx context.Context, owner models.TelegramID, phone string) ([]models.GiftRecord, int, error)
	Snapshot(ctx context.Context) (*service.Snapshot, error)
}

type Config struct {
	BotSecret   string
	BotToken    string
	InitDataTTL time.Duration
	Debug       bool
}

type GiftHandler struct {
	service GiftService
	cfg     Config
}

func NewGiftHandler(service GiftService, cfg Config) *GiftHandler {
	return &GiftHandler{service: service, cfg: cfg}
}

func (h *GiftHandler) RegisterRoutes(router gin.IRouter) {
	gifts := router.Group("/gifts")
	{
		gifts.POST("/add", h.addGift)
		gifts.GET("/add", h.giftExists)
		gifts.POST("/claim", h.claimGift)
		gifts.GET("/claim", h.claimStatus)
		gifts.POST("/download", h.downloadGift)
	}

	router.GET("/user/gifts", h.userGifts)

	if h.cfg.Debug {
		router.GET("/debug/gifts", h.debugGifts)
	}
}

// @Summary Add gift to user
// @Description Grants nftId to telegramId once. A repeated grant returns 409.
// @Tags gifts
// @Accept json
// @Produce json
// @Param input body AddGiftRequest true "Gift to add"
// @Success 200 {object} GiftResponse
// @Failure 400 {object} middleware.ErrorResponse "Missing telegramId or nftId"
// @Failure 401 {object} middleware.ErrorResponse "Invalid bot secret"
// @Failure 409 {object} middleware.ErrorResponse "Gift already claimed"
// @Failure 500 {object} middleware.ErrorResponse
// @Router /gifts/add [post]
func (h *GiftHandler) addGift(c *gin.Context) {
	var req AddGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	if req.BotSecret != "" && subtle.ConstantTimeCompare([]byte(req.BotSecret), []byte(h.cfg.BotSecret)) != 1 {
		h.fail(c, apperrors.NewUnauthorizedError("Invalid bot secret"))
		return
	}
	if req.TelegramID.IsZero() || strings.TrimSpace(req.NFTID) == "" {
		h.fail(c, apperrors.NewValidationError("telegramId,nftId", "Missing required fields: telegramId, nftId"))
		return
	}
	if err := validation.First(
		validation.ValidateNFTID("nftId", req.NFTID),
		validation.ValidatePhone(req.Phone),
		validation.ValidateQuantity(req.Quantity),
		validation.ValidateLength("collectionName", req.CollectionName, validation.MaxGiftNameLength),
		validateMetadata(req.Metadata),
	); err != nil {
		h.fail(c, err)
		return
	}

	in := service.AddGiftInput{
		TelegramID:     req.TelegramID,
		Phone:          req.Phone,
		NFTID:          strings.TrimSpace(req.NFTID),
		CollectionName: req.CollectionName,
		CollectionSlug: req.CollectionSlug,
		Quantity:       req.Quantity,
		Source:         "add",
	}
	if req.Metadata != nil {
		in.Metadata = *req.Metadata
	}

	res, err := h.service.AddGift(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GiftResponse{Success: true, Message: "Gift added successfully", Gift: res.Gift, Verification: res.Verification})
}

// @Summary Check gift registration
// @Tags gifts
// @Produce json
// @Param telegramId query string true "Telegram user id"
// @Param nftId query string true "NFT id"
// @Success 200 {object} ExistsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /gifts/add [get]
func (h *GiftHandler) giftExists(c *gin.Context) {
	owner, ok := h.queryTelegramID(c)
	if !ok {
		return
	}
	nftID := strings.TrimSpace(c.Query("nftId"))
	if nftID == "" {
		h.fail(c, apperrors.NewValidationError("nftId", "Missing telegramId or nftId"))
		return
	}

	exists, err := h.service.GiftExists(c.Request.Context(), owner, nftID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ExistsResponse{Success: true, Exists: exists})
}

// @Summary Claim gift
// @Description Claims a gift from a chat message. nftId falls back to giftHash, then to a timestamp id.
// @Tags gifts
// @Accept json
// @Produce json
// @Param input body ClaimGiftRequest true "Claim"
// @Success 200 {object} GiftResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} ClaimConflictResponse
// @Router /gifts/claim [post]
func (h *GiftHandler) claimGift(c *gin.Context) {
	var req ClaimGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	if err := validation.First(
		validation.ValidateNFTID("nftId", req.NFTID),
		validation.ValidateNFTID("giftHash", req.GiftHash),
		validation.ValidateUsername(req.Username),
		validation.ValidateLength("giftName", req.GiftName, validation.MaxGiftNameLength),
		validation.ValidateLength("collectionName", req.CollectionName, validation.MaxGiftNameLength),
		validation.ValidateLength("imageUrl", req.ImageURL, validation.MaxURLLength),
	); err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.service.ClaimGift(c.Request.Context(), service.ClaimGiftInput{
		TelegramID:     req.TelegramID,
		NFTID:          req.NFTID,
		GiftHash:       req.GiftHash,
		Username:       req.Username,
		GiftName:       req.GiftName,
		CollectionName: req.CollectionName,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicate) {
			c.AbortWithStatusJSON(http.StatusConflict, ClaimConflictResponse{
				Error:          duplicateMessage,
				Code:           string(apperrors.ErrCodeDuplicate),
				AlreadyClaimed: true,
			})
			return
		}
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GiftResponse{Success: true, Message: "Gift claimed successfully", Gift: res.Gift, Verification: res.Verification})
}

// @Summary Check claim status
// @Tags gifts
// @Produce json
// @Param telegramId query string true "Telegram user id"
// @Param giftHash query string true "Gift hash"
// @Success 200 {object} ClaimedResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /gifts/claim [get]
func (h *GiftHandler) claimStatus(c *gin.Context) {
	owner, ok := h.queryTelegramID(c)
	if !ok {
		return
	}
	hash := strings.TrimSpace(c.Query("giftHash"))
	if hash == "" {
		h.fail(c, apperrors.NewValidationError("giftHash", "Missing telegramId or giftHash"))
		return
	}

	claimed, err := h.service.GiftExists(c.Request.Context(), owner, hash)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ClaimedResponse{Success: true, Claimed: claimed})
}

// @Summary Add gift by link
// @Description Resolves gift_link and adds it to the user taken from telegramId or init data.
// @Tags gifts
// @Accept json
// @Produce json
// @Param X-Telegram-Init-Data header string false "Telegram Mini App init data"
// @Param input body DownloadGiftRequest true "Link"
// @Success 200 {object} GiftResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid gift link"
// @Failure 401 {object} middleware.ErrorResponse "Invalid init data"
// @Failure 409 {object} middleware.ErrorResponse
// @Router /gifts/download [post]
func (h *GiftHandler) downloadGift(c *gin.Context) {
	var req DownloadGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid request body"))
		return
	}

	owner := req.TelegramID
	if id, ok := middleware.TelegramIDFrom(c); ok {
		owner = models.TelegramID(id)
	}
	if owner.IsZero() {
		raw := req.InitData
		if raw == "" {
			raw = req.InitDataSnake
		}
		if raw == "" {
			h.fail(c, apperrors.NewValidationError("telegramId", "Missing telegramId or invalid init_data"))
			return
		}
		id, err := middleware.ParseInitData(raw, h.cfg.BotToken, h.cfg.InitDataTTL)
		if err != nil {
			h.fail(c, err)
			return
		}
		owner = models.TelegramID(id)
	}

	if strings.TrimSpace(req.GiftLink) == "" {
		h.fail(c, apperrors.NewValidationError("gift_link", "Missing gift_link"))
		return
	}
	if err := validation.ValidateLength("gift_link", req.GiftLink, validation.MaxGiftLinkLength); err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.service.DownloadGift(c.Request.Context(), service.DownloadGiftInput{TelegramID: owner, GiftLink: req.GiftLink})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, GiftResponse{Success: true, Message: "Gift link added successfully", Gift: res.Gift, Verification: res.Verification})
}

// @Summary List user gifts
// @Description Gifts of telegramId, or of every owner sharing phone. totalCount sums quantities.
// @Tags gifts
// @Produce json
// @Param X-Telegram-Init-Data header string false "Telegram Mini App init data"
// @Param telegramId query string false "Telegram user id"
// @Param phone query string false "Phone"
// @Success 200 {object} UserGiftsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /user/gifts [get]
func (h *GiftHandler) userGifts(c *gin.Context) {
	var owner models.TelegramID
	if id, ok := middleware.TelegramIDFrom(c); ok {
		owner = models.TelegramID(id)
	} else if raw := c.Query("telegramId"); raw != "" {
		id, err := models.ParseTelegramID(raw)
		if err != nil {
			h.fail(c, apperrors.NewValidationError("telegramId", "Invalid telegramId"))
			return
		}
		owner = id
	}

	phone := strings.TrimSpace(c.Query("phone"))
	if owner.IsZero() && phone == "" {
		h.fail(c, apperrors.NewValidationError("telegramId", "Missing telegramId or phone"))
		return
	}

	gifts, total, err := h.service.UserGifts(c.Request.Context(), owner, phone)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, UserGiftsResponse{Success: true, Gifts: gifts, TotalCount: total})
}

// debugGifts dumps the gift store. Only mounted in debug mode.
func (h *GiftHandler) debugGifts(c *gin.Context) {
	snap, err := h.service.Snapshot(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := DebugResponse{Success: true, Snapshot: snap}
	if raw := c.Query("userId"); raw != "" {
		check := &UserCheck{RequestedID: raw}
		if id, err := models.ParseTelegramID(raw); err == nil {
			check.NormalizedID = id
			check.Gifts, check.ExactMatch = snap.GiftsByUser[id]
			check.FoundGifts = len(check.Gifts)
		}
		resp.UserCheck = check
	}
	c.JSON(http.StatusOK, resp)
}

func (h *GiftHandler) queryTelegramID(c *gin.Context) (models.TelegramID, bool) {
	id, err := models.ParseTelegramID(c.Query("telegramId"))
	if err != nil {
		h.fail(c, apperrors.NewValidationError("telegramId", "Missing or invalid telegramId"))
		return "", false
	}
	return id, true
}

const duplicateMessage = "Gift already claimed by this user"

func validateMetadata(m *service.MetadataInput) error {
	if m == nil {
		return nil
	}
	return validation.First(
		validation.ValidateLength("metadata.giftName", m.GiftName, validation.MaxGiftNameLength),
		validation.ValidateLength("metadata.imageUrl", m.ImageURL, validation.MaxURLLength),
		validation.ValidateLength("metadata.animationUrl", m.AnimationURL, validation.MaxURLLength),
		validation.ValidateUsername(m.ClaimedBy),
	)
}

// fail maps service errors onto the API error taxonomy.
func (h *GiftHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicate):
		err = apperrors.NewDuplicateError(duplicateMessage)
	case errors.Is(err, service.ErrMissingTelegramID):
		err = apperrors.NewValidationError("telegramId", "Missing required field: telegramId")
	case errors.Is(err, service.ErrMissingNFTID):
		err = apperrors.NewValidationError("nftId", "Missing required field: nftId")
	case errors.Is(err, nft.ErrInvalidLink):
		err = apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid gift link format")
	}
	middleware.Abort(c, err, h.cfg.Debug)
}
