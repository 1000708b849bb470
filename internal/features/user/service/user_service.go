package service

import (
	"context"
	"errors"
	"fmt"

	"gift-market-backend/internal/common/logger"
	giftmodels "gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/user/models"
	"gift-market-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

// referralBonuses maps an exact referral count to its one-time bonus.
var referralBonuses = map[int64]int64{
	5:  50,
	15: 150,
	30: 300,
	50: 500,
}

// MilestoneBonus returns the bonus granted when the referral count becomes
// exactly count, or 0.
func MilestoneBonus(count int64) int64 {
	return referralBonuses[count]
}

type UserService interface {
	GetUser(ctx context.Context, id giftmodels.TelegramID) (*models.Profile, error)
	GetOrCreateUser(ctx context.Context, id giftmodels.TelegramID, username, firstName string) (*models.Profile, error)
	// ApplyReferral links user to referrer once and pays milestone bonuses.
	ApplyReferral(ctx context.Context, user, referrer giftmodels.TelegramID) (*models.ReferralResult, error)
}

type userService struct {
	repo repository.ProfileRepository
}

func NewUserService(repo repository.ProfileRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id giftmodels.TelegramID) (*models.Profile, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *userService) GetOrCreateUser(ctx context.Context, id giftmodels.TelegramID, username, firstName string) (*models.Profile, error) {
	created, err := s.repo.CreateIfAbsent(ctx, models.NewProfile(id, username, firstName))
	if err != nil {
		return nil, err
	}
	if created {
		logger.Info().Str("telegram_id", id.String()).Str("username", username).Msg("User profile created")
	}
	return s.repo.Get(ctx, id)
}

func (s *userService) ApplyReferral(ctx context.Context, user, referrer giftmodels.TelegramID) (*models.ReferralResult, error) {
	res := &models.ReferralResult{ReferrerID: referrer}
	if user == referrer || referrer.IsZero() {
		return res, nil
	}

	exists, err := s.repo.Exists(ctx, referrer)
	if err != nil {
		return nil, fmt.Errorf("check referrer %s: %w", referrer, err)
	}
	if !exists {
		logger.Debug().Str("telegram_id", user.String()).Str("referrer_id", referrer.String()).Msg("Referrer unknown, link ignored")
		return res, nil
	}

	linked, err := s.repo.SetReferrer(ctx, user, referrer)
	if err != nil {
		return nil, fmt.Errorf("set referrer of %s: %w", user, err)
	}
	if !linked {
		return res, nil
	}

	count, err := s.repo.IncrementReferrals(ctx, referrer)
	if err != nil {
		return nil, fmt.Errorf("increment referrals of %s: %w", referrer, err)
	}
	res.Applied = true
	res.ReferralCount = count

	if bonus := MilestoneBonus(count); bonus > 0 {
		if _, err := s.repo.AddBalance(ctx, referrer, bonus); err != nil {
			return nil, fmt.Errorf("grant referral bonus to %s: %w", referrer, err)
		}
		res.Bonus = bonus
	}

	logger.Info().
		Str("telegram_id", user.String()).
		Str("referrer_id", referrer.String()).
		Int64("referral_count", count).
		Int64("bonus", res.Bonus).
		Msg("Referral applied")
	return res, nil
}
