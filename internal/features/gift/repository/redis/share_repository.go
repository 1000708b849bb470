package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/repository"
)

const (
	shareKeyFmt    = "gift_share:%s"
	receiverKeyFmt = "gift_share:%s:receiver"
)

// acceptScript returns -1 for an unknown token, 0 when it was already
// received and 1 when this call received it. An accepted share never expires.
var acceptScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
if not redis.call('SET', KEYS[2], ARGV[1], 'NX') then
	return 0
end
redis.call('PERSIST', KEYS[1])
return 1
`)

type shareRepository struct {
	client redis.Cmdable
}

func NewShareRepository(client redis.Cmdable) repository.ShareRepository {
	return &shareRepository{client: client}
}

func (r *shareRepository) Create(ctx context.Context, share *models.ShareToken, ttl time.Duration) error {
	share.IsReceived = false
	share.ReceiverTelegramID = ""

	data, err := json.Marshal(share)
	if err != nil {
		return fmt.Errorf("marshal share: %w", err)
	}

	ok, err := r.client.SetNX(ctx, fmt.Sprintf(shareKeyFmt, share.Token), data, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("share token %s already exists", share.Token)
	}
	return nil
}

func (r *shareRepository) Get(ctx context.Context, token string) (*models.ShareToken, error) {
	vals, err := r.client.MGet(ctx, fmt.Sprintf(shareKeyFmt, token), fmt.Sprintf(receiverKeyFmt, token)).Result()
	if err != nil {
		return nil, err
	}

	raw, ok := vals[0].(string)
	if !ok {
		return nil, repository.ErrNotFound
	}

	var share models.ShareToken
	if err := json.Unmarshal([]byte(raw), &share); err != nil {
		return nil, fmt.Errorf("decode share %s: %w", token, err)
	}
	if receiver, ok := vals[1].(string); ok {
		share.IsReceived = true
		share.ReceiverTelegramID = models.TelegramID(receiver)
	}
	return &share, nil
}

func (r *shareRepository) Accept(ctx context.Context, token string, receiver models.TelegramID) (bool, error) {
	keys := []string{fmt.Sprintf(shareKeyFmt, token), fmt.Sprintf(receiverKeyFmt, token)}
	res, err := acceptScript.Run(ctx, r.client, keys, string(receiver)).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return false, err
	}
	return res == 1, nil
}
