package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"gift-market-backend/internal/common/logger"
	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
	"gift-market-backend/internal/features/user/repository"
)

var (
	ErrCodeMismatch = errors.New("verification code mismatch")
)

type AuthService interface {
	// IssueCode stores a fresh five digit code for chatID and returns it.
	IssueCode(ctx context.Context, chatID giftmodels.TelegramID, phone, source string) (string, error)
	// VerifyCode consumes the pending code on a match and opens a session.
	// A mismatch leaves the code in place so the user can retry.
	VerifyCode(ctx context.Context, chatID giftmodels.TelegramID, code string) (*models.Session, error)
	// PhoneOf returns the verified phone of id, or "" when none is linked.
	PhoneOf(ctx context.Context, id giftmodels.TelegramID) (string, error)
}

type authService struct {
	repo       repository.AuthRepository
	codeTTL    time.Duration
	sessionTTL time.Duration
}

func NewAuthService(repo repository.AuthRepository, codeTTL, sessionTTL time.Duration) AuthService {
	return &authService{repo: repo, codeTTL: codeTTL, sessionTTL: sessionTTL}
}

func (s *authService) IssueCode(ctx context.Context, chatID giftmodels.TelegramID, phone, source string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	pending := &models.PendingCode{Code: code, Phone: phone, Source: source, CreatedAt: time.Now()}
	if err := s.repo.SetCode(ctx, chatID, pending, s.codeTTL); err != nil {
		return "", fmt.Errorf("store code for %s: %w", chatID, err)
	}

	logger.Info().Str("telegram_id", chatID.String()).Str("source", source).Msg("Verification code issued")
	return code, nil
}

func (s *authService) VerifyCode(ctx context.Context, chatID giftmodels.TelegramID, code string) (*models.Session, error) {
	pending, err := s.repo.GetCode(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCodeMismatch
		}
		return nil, err
	}
	if pending.Code != code {
		logger.Info().Str("telegram_id", chatID.String()).Msg("Verification code mismatch")
		return nil, ErrCodeMismatch
	}

	if err := s.repo.DeleteCode(ctx, chatID); err != nil {
		return nil, fmt.Errorf("delete code for %s: %w", chatID, err)
	}

	now := time.Now()
	session := &models.Session{
		ID:         uuid.New().String(),
		TelegramID: chatID,
		Phone:      pending.Phone,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	if err := s.repo.CreateSession(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("create session for %s: %w", chatID, err)
	}
	if pending.Phone != "" {
		if err := s.repo.LinkPhone(ctx, chatID, pending.Phone); err != nil {
			return nil, fmt.Errorf("link phone for %s: %w", chatID, err)
		}
	}

	logger.Info().Str("telegram_id", chatID.String()).Str("session_id", session.ID).Msg("Session created")
	return session, nil
}

func (s *authService) PhoneOf(ctx context.Context, id giftmodels.TelegramID) (string, error) {
	phone, err := s.repo.GetPhone(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil
	}
	return phone, err
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(90000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%05d", n.Int64()+10000), nil
}
