package service

import (
	"context"
	"errors"
	"fmt"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/repository"
)

var (
	// ErrDuplicate means the owner already holds this nftId.
	ErrDuplicate = errors.New("gift already claimed by this user")
)

// Ledger appends gift records behind the registry gate.
type Ledger struct {
	registry repository.RegistryRepository
	records  repository.LedgerRepository
}

func NewLedger(registry repository.RegistryRepository, records repository.LedgerRepository) *Ledger {
	return &Ledger{registry: registry, records: records}
}

// Add stores gift for its owner exactly once per (nftId, owner). A second
// add returns ErrDuplicate without touching the ledger.
func (l *Ledger) Add(ctx context.Context, gift *models.GiftRecord) (*models.GiftRecord, error) {
	key := models.RegistryKey(gift.NFTID, gift.TelegramID)

	admitted, err := l.registry.Admit(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("registry admit %s: %w", key, err)
	}
	if !admitted {
		return nil, ErrDuplicate
	}

	if err := l.records.Append(ctx, gift); err != nil {
		if relErr := l.registry.Release(ctx, key); relErr != nil {
			// the key now blocks this owner with no record behind it
			logger.Error().Err(relErr).
				Str("registry_key", key).
				Str("event", "registry_key_orphaned").
				Msg("Failed to release registry key after ledger failure")
		}
		return nil, fmt.Errorf("ledger append %s: %w", key, err)
	}
	return gift, nil
}

func (l *Ledger) Has(ctx context.Context, nftID string, owner models.TelegramID) (bool, error) {
	return l.registry.Contains(ctx, models.RegistryKey(nftID, owner))
}

func (l *Ledger) ByOwner(ctx context.Context, owner models.TelegramID) ([]models.GiftRecord, error) {
	return l.records.ListByOwner(ctx, owner)
}

func (l *Ledger) ByPhone(ctx context.Context, phone string) ([]models.GiftRecord, error) {
	return l.records.ListByPhone(ctx, phone)
}

// Snapshot is a dump of the store used by the debug endpoint.
type Snapshot struct {
	RegistrySize int64                                    `json:"registrySize"`
	TotalUsers   int                                      `json:"totalUsers"`
	TotalGifts   int                                      `json:"totalGifts"`
	GiftsByUser  map[models.TelegramID][]models.GiftRecord `json:"giftsByUser"`
}

func (l *Ledger) Snapshot(ctx context.Context) (*Snapshot, error) {
	size, err := l.registry.Size(ctx)
	if err != nil {
		return nil, err
	}
	owners, err := l.records.Owners(ctx)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{RegistrySize: size, TotalUsers: len(owners), GiftsByUser: make(map[models.TelegramID][]models.GiftRecord, len(owners))}
	for _, owner := range owners {
		gifts, err := l.records.ListByOwner(ctx, owner)
		if err != nil {
			return nil, err
		}
		snap.GiftsByUser[owner] = gifts
		snap.TotalGifts += len(gifts)
	}
	return snap, nil
}
