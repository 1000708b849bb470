package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/repository"
)

var (
	ErrShareNotFound = errors.New("share token not found")
)

type IssueShareInput struct {
	NFTLink         string
	NFTName         string
	NFTNumber       string
	CreatorID       models.TelegramID
	CreatorUsername string
}

type ShareService struct {
	repo    repository.ShareRepository
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewShareService(repo repository.ShareRepository, ttl time.Duration, m *metrics.Metrics) *ShareService {
	return &ShareService{repo: repo, ttl: ttl, metrics: m}
}

// Issue creates an unreceived share token for the offered gift.
func (s *ShareService) Issue(ctx context.Context, in IssueShareInput) (*models.ShareToken, error) {
	token, err := newShareToken()
	if err != nil {
		return nil, err
	}

	share := &models.ShareToken{
		Token:             token,
		NFTLink:           in.NFTLink,
		NFTName:           in.NFTName,
		NFTNumber:         in.NFTNumber,
		CreatorTelegramID: in.CreatorID,
		CreatorUsername:   in.CreatorUsername,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, share, s.ttl); err != nil {
		return nil, fmt.Errorf("create share: %w", err)
	}

	s.metrics.ShareTokenTotal.WithLabelValues("issued").Inc()
	logger.Info().
		Str("share_token", token).
		Str("creator_id", in.CreatorID.String()).
		Str("nft_link", in.NFTLink).
		Msg("Share token issued")
	return share, nil
}

func (s *ShareService) Lookup(ctx context.Context, token string) (*models.ShareToken, error) {
	share, err := s.repo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShareNotFound
		}
		return nil, err
	}
	return share, nil
}

// Accept flips the token to received by receiver. It returns false for an
// unknown or already received token.
func (s *ShareService) Accept(ctx context.Context, token string, receiver models.TelegramID) (bool, error) {
	ok, err := s.repo.Accept(ctx, token, receiver)
	if err != nil {
		return false, fmt.Errorf("accept share %s: %w", token, err)
	}
	if ok {
		s.metrics.ShareTokenTotal.WithLabelValues("accepted").Inc()
	} else {
		s.metrics.ShareTokenTotal.WithLabelValues("rejected").Inc()
	}
	return ok, nil
}

func newShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate share token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
