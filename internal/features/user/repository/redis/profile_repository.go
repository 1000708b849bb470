package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
	"gift-market-backend/internal/features/user/repository"
)

const profileKeyFmt = "user:%s"

type profileRepository struct {
	client redis.Cmdable
}

func NewProfileRepository(client redis.Cmdable) repository.ProfileRepository {
	return &profileRepository{client: client}
}

func profileKey(id giftmodels.TelegramID) string {
	return fmt.Sprintf(profileKeyFmt, id)
}

func (r *profileRepository) CreateIfAbsent(ctx context.Context, p *models.Profile) (bool, error) {
	key := profileKey(p.ID)
	fields := map[string]string{
		"username":       p.Username,
		"first_name":     p.FirstName,
		"balance":        strconv.FormatInt(p.Balance, 10),
		"level":          strconv.Itoa(p.Level),
		"rating":         strconv.Itoa(p.Rating),
		"referral_count": strconv.FormatInt(p.ReferralCount, 10),
		"created_at":     strconv.FormatInt(p.CreatedAt, 10),
	}

	// HSETNX per field: a concurrent referral increment is never clobbered.
	pipe := r.client.TxPipeline()
	created := pipe.HSetNX(ctx, key, "id", string(p.ID))
	for field, value := range fields {
		pipe.HSetNX(ctx, key, field, value)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("create profile %s: %w", p.ID, err)
	}
	return created.Val(), nil
}

func (r *profileRepository) Get(ctx context.Context, id giftmodels.TelegramID) (*models.Profile, error) {
	res := r.client.HGetAll(ctx, profileKey(id))
	if err := res.Err(); err != nil {
		return nil, err
	}
	if len(res.Val()) == 0 {
		return nil, repository.ErrNotFound
	}

	var p models.Profile
	if err := res.Scan(&p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	return &p, nil
}

func (r *profileRepository) Exists(ctx context.Context, id giftmodels.TelegramID) (bool, error) {
	n, err := r.client.Exists(ctx, profileKey(id)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *profileRepository) SetReferrer(ctx context.Context, id, referrer giftmodels.TelegramID) (bool, error) {
	return r.client.HSetNX(ctx, profileKey(id), "referred_by", string(referrer)).Result()
}

func (r *profileRepository) IncrementReferrals(ctx context.Context, id giftmodels.TelegramID) (int64, error) {
	return r.client.HIncrBy(ctx, profileKey(id), "referral_count", 1).Result()
}

func (r *profileRepository) AddBalance(ctx context.Context, id giftmodels.TelegramID, amount int64) (int64, error) {
	n, err := r.client.HIncrBy(ctx, profileKey(id), "balance", amount).Result()
	if errors.Is(err, redis.Nil) {
		return 0, repository.ErrNotFound
	}
	return n, err
}
