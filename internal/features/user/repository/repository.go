package repository

import (
	"context"
	"errors"
	"time"

	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
)

var ErrNotFound = errors.New("not found")

type ProfileRepository interface {
	// CreateIfAbsent writes p unless a profile with that id exists; existing
	// fields are never overwritten.
	CreateIfAbsent(ctx context.Context, p *models.Profile) (bool, error)
	Get(ctx context.Context, id giftmodels.TelegramID) (*models.Profile, error)
	Exists(ctx context.Context, id giftmodels.TelegramID) (bool, error)
	// SetReferrer records the referrer once; later calls report false.
	SetReferrer(ctx context.Context, id, referrer giftmodels.TelegramID) (bool, error)
	IncrementReferrals(ctx context.Context, id giftmodels.TelegramID) (int64, error)
	AddBalance(ctx context.Context, id giftmodels.TelegramID, amount int64) (int64, error)
}

type AuthRepository interface {
	SetCode(ctx context.Context, chatID giftmodels.TelegramID, code *models.PendingCode, ttl time.Duration) error
	GetCode(ctx context.Context, chatID giftmodels.TelegramID) (*models.PendingCode, error)
	DeleteCode(ctx context.Context, chatID giftmodels.TelegramID) error
	CreateSession(ctx context.Context, s *models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	LinkPhone(ctx context.Context, id giftmodels.TelegramID, phone string) error
	GetPhone(ctx context.Context, id giftmodels.TelegramID) (string, error)
}
