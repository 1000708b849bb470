package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/nft"
	"gift-market-backend/internal/features/nftinfo"
)

var (
	ErrMissingTelegramID = errors.New("missing telegramId")
	ErrMissingNFTID      = errors.New("missing nftId")
)

// PhoneResolver returns the verified phone of a user, "" when unknown.
type PhoneResolver interface {
	PhoneOf(ctx context.Context, id models.TelegramID) (string, error)
}

// MetadataInput carries caller supplied metadata; set fields win over
// looked up and synthesized values.
type MetadataInput struct {
	GiftName     string `json:"giftName,omitempty"`
	Rarity       string `json:"rarity,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	AnimationURL string `json:"animationUrl,omitempty"`
	ClaimedBy    string `json:"claimedBy,omitempty"`
	ClaimedAt    int64  `json:"claimedAt,omitempty"`
}

type AddGiftInput struct {
	TelegramID     models.TelegramID
	Phone          string
	NFTID          string
	CollectionName string
	CollectionSlug string
	Quantity       int
	Metadata       MetadataInput
	Source         string
}

type ClaimGiftInput struct {
	TelegramID     models.TelegramID
	NFTID          string
	GiftHash       string
	Username       string
	GiftName       string
	CollectionName string
	ImageURL       string
}

type DownloadGiftInput struct {
	TelegramID models.TelegramID
	GiftLink   string
}

type Verification struct {
	TotalGifts int               `json:"totalGifts"`
	TelegramID models.TelegramID `json:"telegramId" swaggertype:"string"`
}

type AddResult struct {
	Gift         *models.GiftRecord
	Verification Verification
}

type GiftService struct {
	ledger  *Ledger
	lookup  nftinfo.Lookup
	phones  PhoneResolver
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewGiftService(ledger *Ledger, lookup nftinfo.Lookup, phones PhoneResolver, m *metrics.Metrics) *GiftService {
	return &GiftService{ledger: ledger, lookup: lookup, phones: phones, metrics: m, now: time.Now}
}

// AddGift registers a pre-formed nftId for a user.
func (s *GiftService) AddGift(ctx context.Context, in AddGiftInput) (*AddResult, error) {
	if in.TelegramID.IsZero() {
		return nil, ErrMissingTelegramID
	}
	if strings.TrimSpace(in.NFTID) == "" {
		return nil, ErrMissingNFTID
	}

	id, err := nft.FromID(in.NFTID)
	if err != nil {
		return nil, err
	}
	if in.Source == "" {
		in.Source = "add"
	}
	return s.add(ctx, id, in)
}

// ClaimGift registers a gift claimed from a chat message. The nftId falls
// back to giftHash and then to a timestamp id.
func (s *GiftService) ClaimGift(ctx context.Context, in ClaimGiftInput) (*AddResult, error) {
	if in.TelegramID.IsZero() {
		return nil, ErrMissingTelegramID
	}

	nftID := firstNonEmpty(strings.TrimSpace(in.NFTID), strings.TrimSpace(in.GiftHash))
	if nftID == "" {
		nftID = fmt.Sprintf("gift_%d", s.now().UnixMilli())
	}

	id, err := nft.FromID(nftID)
	if err != nil {
		return nil, err
	}
	return s.add(ctx, id, AddGiftInput{
		TelegramID:     in.TelegramID,
		NFTID:          nftID,
		CollectionName: in.CollectionName,
		Metadata: MetadataInput{
			GiftName:  in.GiftName,
			ImageURL:  in.ImageURL,
			ClaimedBy: in.Username,
			ClaimedAt: s.now().UnixMilli(),
		},
		Source: "claim",
	})
}

// DownloadGift registers the gift a link points at.
func (s *GiftService) DownloadGift(ctx context.Context, in DownloadGiftInput) (*AddResult, error) {
	if in.TelegramID.IsZero() {
		return nil, ErrMissingTelegramID
	}
	id, err := nft.Resolve(in.GiftLink)
	if err != nil {
		return nil, err
	}
	return s.AddIdentity(ctx, id, in.TelegramID, "download")
}

// AddIdentity registers an already resolved identity.
func (s *GiftService) AddIdentity(ctx context.Context, id nft.Identity, owner models.TelegramID, source string) (*AddResult, error) {
	return s.add(ctx, id, AddGiftInput{TelegramID: owner, NFTID: id.NFTID, Source: source})
}

func (s *GiftService) add(ctx context.Context, id nft.Identity, in AddGiftInput) (*AddResult, error) {
	gift := s.buildRecord(ctx, id, in)

	log := logger.Component("gift").With().
		Str("telegram_id", gift.TelegramID.String()).
		Str("nft_id", gift.NFTID).
		Str("source", in.Source).
		Logger()

	if _, err := s.ledger.Add(ctx, gift); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.metrics.GiftAdmissionTotal.WithLabelValues(in.Source, "duplicate").Inc()
			log.Info().Msg("Gift already in inventory")
			return nil, err
		}
		s.metrics.GiftAdmissionTotal.WithLabelValues(in.Source, "error").Inc()
		log.Error().Err(err).Msg("Failed to add gift")
		return nil, err
	}
	s.metrics.GiftAdmissionTotal.WithLabelValues(in.Source, "added").Inc()

	res := &AddResult{Gift: gift, Verification: Verification{TelegramID: gift.TelegramID}}

	// the write is committed, a failed re-query only loses the count
	owned, err := s.ledger.ByOwner(ctx, gift.TelegramID)
	if err != nil {
		log.Error().Err(err).Str("phone", gift.Phone).Msg("Gift added but verification query failed")
		return res, nil
	}
	res.Verification.TotalGifts = len(owned)
	log.Info().Int("total_gifts", len(owned)).Str("phone", gift.Phone).Msg("Gift added")
	return res, nil
}

func (s *GiftService) buildRecord(ctx context.Context, id nft.Identity, in AddGiftInput) *models.GiftRecord {
	if in.CollectionName != "" {
		id.CollectionName = in.CollectionName
		id.DisplayName = nft.DisplayName(in.CollectionName, id.Number)
	}
	if slug := nft.Slugify(in.CollectionSlug); slug != "" {
		id.CollectionSlug = slug
	}

	var info *nftinfo.Info
	if s.lookup != nil {
		// lookup failures fall through to synthesized defaults
		info, _ = s.lookup.Lookup(ctx, id)
	}

	meta := in.Metadata
	assets := nft.Synthesize(id,
		nft.Assets{ImageURL: meta.ImageURL, AnimationURL: meta.AnimationURL},
		info.Assets(),
	)

	giftName := meta.GiftName
	if giftName == "" && info != nil {
		giftName = info.Name
	}
	if giftName == "" {
		giftName = id.DisplayName
	}

	rarity := meta.Rarity
	if rarity == "" {
		rarity = models.DefaultRarity
	}

	quantity := in.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	return &models.GiftRecord{
		NFTID:          id.NFTID,
		CollectionName: id.CollectionName,
		CollectionSlug: id.CollectionSlug,
		Phone:          s.resolvePhone(ctx, in.TelegramID, in.Phone),
		TelegramID:     in.TelegramID,
		Quantity:       quantity,
		Metadata: models.GiftMetadata{
			GiftName:     giftName,
			Rarity:       rarity,
			ImageURL:     assets.ImageURL,
			AnimationURL: assets.AnimationURL,
			ClaimedBy:    meta.ClaimedBy,
			ClaimedAt:    meta.ClaimedAt,
		},
		Source:  in.Source,
		AddedAt: s.now().UTC(),
	}
}

func (s *GiftService) resolvePhone(ctx context.Context, owner models.TelegramID, phone string) string {
	if p := strings.TrimSpace(phone); p != "" {
		return p
	}
	if s.phones != nil {
		p, err := s.phones.PhoneOf(ctx, owner)
		if err != nil {
			logger.Warn().Err(err).Str("telegram_id", owner.String()).Msg("Phone lookup failed")
		} else if p = strings.TrimSpace(p); p != "" {
			return p
		}
	}
	return models.UnknownPhone
}

// GiftExists reports whether owner already holds nftID.
func (s *GiftService) GiftExists(ctx context.Context, owner models.TelegramID, nftID string) (bool, error) {
	return s.ledger.Has(ctx, nftID, owner)
}

// UserGifts returns the gifts of owner, or of every owner sharing phone
// when owner is empty, and the summed quantity.
func (s *GiftService) UserGifts(ctx context.Context, owner models.TelegramID, phone string) ([]models.GiftRecord, int, error) {
	var (
		gifts []models.GiftRecord
		err   error
	)
	switch {
	case !owner.IsZero():
		gifts, err = s.ledger.ByOwner(ctx, owner)
	case strings.TrimSpace(phone) != "":
		gifts, err = s.ledger.ByPhone(ctx, strings.TrimSpace(phone))
	default:
		return nil, 0, ErrMissingTelegramID
	}
	if err != nil {
		return nil, 0, err
	}
	if gifts == nil {
		gifts = []models.GiftRecord{}
	}
	return gifts, models.TotalQuantity(gifts), nil
}

// Snapshot dumps the store for debugging.
func (s *GiftService) Snapshot(ctx context.Context) (*Snapshot, error) {
	return s.ledger.Snapshot(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
