package repository

import (
	"context"
	"errors"
	"time"

	"gift-market-backend/internal/features/gift/models"
)

var (
	ErrNotFound = errors.New("not found")
)

// RegistryRepository is the set of granted (nftId, owner) keys.
// Admit is an atomic check-and-set: concurrent callers with the same key
// see exactly one true.
type RegistryRepository interface {
	Admit(ctx context.Context, key string) (bool, error)
	Contains(ctx context.Context, key string) (bool, error)
	// Release removes a key whose ledger write failed after admission.
	Release(ctx context.Context, key string) error
	Size(ctx context.Context) (int64, error)
}

// LedgerRepository stores gift records per owner in insertion order.
type LedgerRepository interface {
	Append(ctx context.Context, gift *models.GiftRecord) error
	ListByOwner(ctx context.Context, owner models.TelegramID) ([]models.GiftRecord, error)
	ListByPhone(ctx context.Context, phone string) ([]models.GiftRecord, error)
	Owners(ctx context.Context) ([]models.TelegramID, error)
}

// ShareRepository stores share tokens. Accept flips a token to received
// atomically and reports false for unknown or already received tokens.
type ShareRepository interface {
	Create(ctx context.Context, share *models.ShareToken, ttl time.Duration) error
	Get(ctx context.Context, token string) (*models.ShareToken, error)
	Accept(ctx context.Context, token string, receiver models.TelegramID) (bool, error)
}
