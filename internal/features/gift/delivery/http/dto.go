package http

import (
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/service"
)

// AddGiftRequest is sent by the bot (or an admin tool) to grant a gift.
type AddGiftRequest struct {
	TelegramID     models.TelegramID      `json:"telegramId" swaggertype:"string" example:"123456789"`
	Phone          string                 `json:"phone,omitempty" example:"+15550100"`
	NFTID          string                 `json:"nftId" example:"IonicDryer-7561"`
	CollectionName string                 `json:"collectionName,omitempty" example:"Ionic Dryer"`
	CollectionSlug string                 `json:"collectionSlug,omitempty" example:"ionicdryer"`
	Quantity       int                    `json:"quantity,omitempty" example:"1"`
	Metadata       *service.MetadataInput `json:"metadata,omitempty"`
	BotSecret      string                 `json:"botSecret,omitempty"`
}

// ClaimGiftRequest is sent when a user claims a gift from a chat message.
type ClaimGiftRequest struct {
	TelegramID     models.TelegramID `json:"telegramId" swaggertype:"string" example:"123456789"`
	NFTID          string            `json:"nftId,omitempty" example:"IonicDryer-7561"`
	GiftHash       string            `json:"giftHash,omitempty"`
	Username       string            `json:"username,omitempty" example:"johndoe"`
	GiftName       string            `json:"giftName,omitempty"`
	CollectionName string            `json:"collectionName,omitempty"`
	ImageURL       string            `json:"imageUrl,omitempty"`
}

// DownloadGiftRequest adds the gift a link points at. The user comes from
// telegramId or from Mini App init data.
type DownloadGiftRequest struct {
	TelegramID    models.TelegramID `json:"telegramId,omitempty" swaggertype:"string" example:"123456789"`
	InitData      string            `json:"initData,omitempty"`
	InitDataSnake string            `json:"init_data,omitempty"`
	GiftLink      string            `json:"gift_link" example:"https://t.me/nft/IonicDryer-7561"`
}

type GiftResponse struct {
	Success      bool                 `json:"success" example:"true"`
	Message      string               `json:"message" example:"Gift added successfully"`
	Gift         *models.GiftRecord   `json:"gift"`
	Verification service.Verification `json:"verification"`
}

type ClaimConflictResponse struct {
	Success        bool   `json:"success" example:"false"`
	Error          string `json:"error" example:"Gift already claimed by this user"`
	Code           string `json:"code" example:"DUPLICATE"`
	AlreadyClaimed bool   `json:"alreadyClaimed" example:"true"`
}

type ExistsResponse struct {
	Success bool `json:"success" example:"true"`
	Exists  bool `json:"exists"`
}

type ClaimedResponse struct {
	Success bool `json:"success" example:"true"`
	Claimed bool `json:"claimed"`
}

type UserGiftsResponse struct {
	Success    bool                `json:"success" example:"true"`
	Gifts      []models.GiftRecord `json:"gifts"`
	TotalCount int                 `json:"totalCount" example:"1"`
}

type UserCheck struct {
	RequestedID  string              `json:"requestedId"`
	NormalizedID models.TelegramID   `json:"normalizedId"`
	ExactMatch   bool                `json:"exactMatch"`
	FoundGifts   int                 `json:"foundGifts"`
	Gifts        []models.GiftRecord `json:"gifts"`
}

type DebugResponse struct {
	Success bool `json:"success"`
	*service.Snapshot
	UserCheck *UserCheck `json:"userCheck,omitempty"`
}
