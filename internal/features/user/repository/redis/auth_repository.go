package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
	"gift-market-backend/internal/features/user/repository"
)

const (
	codeKeyFmt    = "auth:code:%s"
	sessionKeyFmt = "auth:session:%s"
	phoneKeyFmt   = "user:%s:phone"
)

type authRepository struct {
	client redis.Cmdable
}

func NewAuthRepository(client redis.Cmdable) repository.AuthRepository {
	return &authRepository{client: client}
}

func (r *authRepository) SetCode(ctx context.Context, chatID giftmodels.TelegramID, code *models.PendingCode, ttl time.Duration) error {
	return r.setJSON(ctx, fmt.Sprintf(codeKeyFmt, chatID), code, ttl)
}

func (r *authRepository) GetCode(ctx context.Context, chatID giftmodels.TelegramID) (*models.PendingCode, error) {
	var code models.PendingCode
	if err := r.getJSON(ctx, fmt.Sprintf(codeKeyFmt, chatID), &code); err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *authRepository) DeleteCode(ctx context.Context, chatID giftmodels.TelegramID) error {
	return r.client.Del(ctx, fmt.Sprintf(codeKeyFmt, chatID)).Err()
}

func (r *authRepository) CreateSession(ctx context.Context, s *models.Session, ttl time.Duration) error {
	return r.setJSON(ctx, fmt.Sprintf(sessionKeyFmt, s.ID), s, ttl)
}

func (r *authRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var s models.Session
	if err := r.getJSON(ctx, fmt.Sprintf(sessionKeyFmt, id), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *authRepository) LinkPhone(ctx context.Context, id giftmodels.TelegramID, phone string) error {
	return r.client.Set(ctx, fmt.Sprintf(phoneKeyFmt, id), phone, 0).Err()
}

func (r *authRepository) GetPhone(ctx context.Context, id giftmodels.TelegramID) (string, error) {
	phone, err := r.client.Get(ctx, fmt.Sprintf(phoneKeyFmt, id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrNotFound
	}
	return phone, err
}

func (r *authRepository) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *authRepository) getJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, dest)
}
