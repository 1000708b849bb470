package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"gift-market-backend/internal/features/gift/repository"
)

const registryKey = "gift_registry"

type registryRepository struct {
	client redis.Cmdable
}

func NewRegistryRepository(client redis.Cmdable) repository.RegistryRepository {
	return &registryRepository{client: client}
}

func (r *registryRepository) Admit(ctx context.Context, key string) (bool, error) {
	added, err := r.client.SAdd(ctx, registryKey, key).Result()
	if err != nil {
		return false, err
	}
	return added == 1, nil
}

func (r *registryRepository) Contains(ctx context.Context, key string) (bool, error) {
	return r.client.SIsMember(ctx, registryKey, key).Result()
}

func (r *registryRepository) Release(ctx context.Context, key string) error {
	return r.client.SRem(ctx, registryKey, key).Err()
}

func (r *registryRepository) Size(ctx context.Context) (int64, error) {
	return r.client.SCard(ctx, registryKey).Result()
}
