package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/nft"
)

// Fallback is the secondary add path tried once when the primary ledger
// write fails after a share was accepted.
type Fallback interface {
	DownloadGift(ctx context.Context, owner models.TelegramID, giftLink string) error
}

type ReceiveOutcome string

const (
	ReceiveAdded           ReceiveOutcome = "added"
	ReceiveAddedByFallback ReceiveOutcome = "added_by_fallback"
	ReceiveAlreadyOwned    ReceiveOutcome = "already_owned"
	ReceiveNotFound        ReceiveOutcome = "not_found"
	ReceiveAlreadyReceived ReceiveOutcome = "already_received"
	ReceiveFailed          ReceiveOutcome = "failed"
)

type ReceiveResult struct {
	Outcome ReceiveOutcome
	Share   *models.ShareToken
	Gift    *models.GiftRecord
}

// TransferService moves a shared gift into the receiver's inventory.
type TransferService struct {
	shares   *ShareService
	gifts    *GiftService
	fallback Fallback
	metrics  *metrics.Metrics
}

func NewTransferService(shares *ShareService, gifts *GiftService, fallback Fallback, m *metrics.Metrics) *TransferService {
	return &TransferService{shares: shares, gifts: gifts, fallback: fallback, metrics: m}
}

// Issue offers a gift link from creator. The link must resolve.
func (s *TransferService) Issue(ctx context.Context, link string, creator models.TelegramID, creatorUsername string) (*models.ShareToken, nft.Identity, error) {
	id, err := nft.Resolve(link)
	if err != nil {
		return nil, nft.Identity{}, err
	}
	name, number := id.NFTID, ""
	if id.Number != nft.PreviewNumber {
		name, number = id.NFTID[:len(id.NFTID)-len(id.Number)-1], id.Number
	}

	share, err := s.shares.Issue(ctx, IssueShareInput{
		NFTLink:         link,
		NFTName:         name,
		NFTNumber:       number,
		CreatorID:       creator,
		CreatorUsername: creatorUsername,
	})
	if err != nil {
		return nil, id, err
	}
	return share, id, nil
}

// Receive accepts token for receiver and adds the gift. The token is
// consumed before the ledger write; if both the primary and the fallback
// add fail the token stays consumed and the loss is logged.
func (s *TransferService) Receive(ctx context.Context, token string, receiver models.TelegramID) (*ReceiveResult, error) {
	share, err := s.shares.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrShareNotFound) {
			return &ReceiveResult{Outcome: ReceiveNotFound}, nil
		}
		return nil, err
	}
	if share.IsReceived {
		return &ReceiveResult{Outcome: ReceiveAlreadyReceived, Share: share}, nil
	}

	ok, err := s.shares.Accept(ctx, token, receiver)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &ReceiveResult{Outcome: ReceiveAlreadyReceived, Share: share}, nil
	}
	share.IsReceived = true
	share.ReceiverTelegramID = receiver

	id, err := s.identityOf(share)
	if err != nil {
		return nil, err
	}

	log := logger.Component("transfer").With().
		Str("share_token", token).
		Str("telegram_id", receiver.String()).
		Str("nft_id", id.NFTID).
		Logger()

	res, err := s.gifts.AddIdentity(ctx, id, receiver, "share")
	if err == nil {
		log.Info().Msg("Shared gift received")
		return &ReceiveResult{Outcome: ReceiveAdded, Share: share, Gift: res.Gift}, nil
	}
	if errors.Is(err, ErrDuplicate) {
		return &ReceiveResult{Outcome: ReceiveAlreadyOwned, Share: share}, nil
	}

	log.Warn().Err(err).Msg("Primary add failed, trying fallback")
	if s.fallback != nil {
		fbErr := s.fallback.DownloadGift(ctx, receiver, share.NFTLink)
		if fbErr == nil {
			log.Info().Msg("Shared gift received by fallback")
			return &ReceiveResult{Outcome: ReceiveAddedByFallback, Share: share}, nil
		}
		if errors.Is(fbErr, ErrDuplicate) {
			// the primary write landed before it reported failure
			log.Info().Msg("Shared gift already in inventory after fallback")
			return &ReceiveResult{Outcome: ReceiveAlreadyOwned, Share: share}, nil
		}
		err = fmt.Errorf("%w; fallback: %v", err, fbErr)
	}

	s.metrics.ShareTokenTotal.WithLabelValues("burned").Inc()
	log.Error().Err(err).Str("event", "share_token_burned").Msg("Share token consumed but gift not added")
	return &ReceiveResult{Outcome: ReceiveFailed, Share: share}, nil
}

// identityOf resolves the shared link, falling back to the stored name and
// number when the link no longer parses.
func (s *TransferService) identityOf(share *models.ShareToken) (nft.Identity, error) {
	if id, err := nft.Resolve(share.NFTLink); err == nil {
		return id, nil
	}
	switch {
	case share.NFTName != "" && share.NFTNumber != "":
		return nft.FromID(share.NFTName + "-" + share.NFTNumber)
	case share.NFTName != "":
		return nft.FromID(share.NFTName)
	default:
		return nft.FromID(fmt.Sprintf("gift_%d", time.Now().UnixMilli()))
	}
}
