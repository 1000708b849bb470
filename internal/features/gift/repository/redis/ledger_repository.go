package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/repository"
)

const (
	ownersKey     = "gifts:owners"
	ownerKeyFmt   = "gifts:user:%s"
	phoneIndexFmt = "gifts:phone:%s"
)

type ledgerRepository struct {
	client redis.Cmdable
}

func NewLedgerRepository(client redis.Cmdable) repository.LedgerRepository {
	return &ledgerRepository{client: client}
}

func (r *ledgerRepository) Append(ctx context.Context, gift *models.GiftRecord) error {
	data, err := json.Marshal(gift)
	if err != nil {
		return fmt.Errorf("marshal gift: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, fmt.Sprintf(ownerKeyFmt, gift.TelegramID), data)
	pipe.SAdd(ctx, ownersKey, string(gift.TelegramID))
	if gift.Phone != "" {
		pipe.SAdd(ctx, fmt.Sprintf(phoneIndexFmt, gift.Phone), string(gift.TelegramID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append gift: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListByOwner(ctx context.Context, owner models.TelegramID) ([]models.GiftRecord, error) {
	items, err := r.client.LRange(ctx, fmt.Sprintf(ownerKeyFmt, owner), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	gifts := make([]models.GiftRecord, 0, len(items))
	for _, item := range items {
		var g models.GiftRecord
		if err := json.Unmarshal([]byte(item), &g); err != nil {
			return nil, fmt.Errorf("decode gift of %s: %w", owner, err)
		}
		gifts = append(gifts, g)
	}
	return gifts, nil
}

func (r *ledgerRepository) ListByPhone(ctx context.Context, phone string) ([]models.GiftRecord, error) {
	owners, err := r.client.SMembers(ctx, fmt.Sprintf(phoneIndexFmt, phone)).Result()
	if err != nil {
		return nil, err
	}

	var gifts []models.GiftRecord
	for _, owner := range owners {
		owned, err := r.ListByOwner(ctx, models.TelegramID(owner))
		if err != nil {
			return nil, err
		}
		for _, g := range owned {
			if g.Phone == phone {
				gifts = append(gifts, g)
			}
		}
	}
	return gifts, nil
}

func (r *ledgerRepository) Owners(ctx context.Context) ([]models.TelegramID, error) {
	members, err := r.client.SMembers(ctx, ownersKey).Result()
	if err != nil {
		return nil, err
	}
	owners := make([]models.TelegramID, 0, len(members))
	for _, m := range members {
		owners = append(owners, models.TelegramID(m))
	}
	return owners, nil
}
