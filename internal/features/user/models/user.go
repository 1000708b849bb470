package models

import (
	"time"

	giftmodels "gift-market-backend/internal/features/gift/models"
)

// Profile is a bot user. Stored as a redis hash, hence the redis tags.
type Profile struct {
	ID            giftmodels.TelegramID `json:"id" redis:"id" swaggertype:"string" example:"123456789"`
	Username      string                `json:"username" redis:"username" example:"johndoe"`
	FirstName     string                `json:"firstName" redis:"first_name" example:"John"`
	Balance       int64                 `json:"balance" redis:"balance" example:"50"`
	Level         int                   `json:"level" redis:"level" example:"1"`
	Rating        int                   `json:"rating" redis:"rating" example:"0"`
	ReferralCount int64                 `json:"referralCount" redis:"referral_count" example:"5"`
	ReferredBy    giftmodels.TelegramID `json:"referredBy,omitempty" redis:"referred_by" swaggertype:"string"`
	CreatedAt     int64                 `json:"createdAt" redis:"created_at" example:"1718000000000"`
}

// NewProfile returns a fresh profile with the starting level.
func NewProfile(id giftmodels.TelegramID, username, firstName string) *Profile {
	if firstName == "" {
		firstName = "User"
	}
	return &Profile{
		ID:        id,
		Username:  username,
		FirstName: firstName,
		Level:     1,
		CreatedAt: time.Now().UnixMilli(),
	}
}

// PendingCode is a verification code waiting to be typed into the Mini App.
type PendingCode struct {
	Code      string    `json:"code"`
	Phone     string    `json:"phone"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is issued once a phone number has been verified.
type Session struct {
	ID         string                `json:"id"`
	TelegramID giftmodels.TelegramID `json:"telegramId"`
	Phone      string                `json:"phone"`
	CreatedAt  time.Time             `json:"createdAt"`
	ExpiresAt  time.Time             `json:"expiresAt"`
}

// ReferralResult reports what a /start ref_ link changed.
type ReferralResult struct {
	Applied       bool
	ReferrerID    giftmodels.TelegramID
	ReferralCount int64
	Bonus         int64
}
