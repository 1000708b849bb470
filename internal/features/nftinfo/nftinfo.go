// Package nftinfo looks up gift metadata published on chain, so real media
// URLs can take precedence over the synthesized fragment defaults.
package nftinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"gift-market-backend/internal/common/cache"
	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/features/gift/nft"
	"gift-market-backend/internal/platform/ton"
)

// Info is the subset of item metadata the gift flows use.
type Info struct {
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
	AnimationURL string `json:"animationUrl,omitempty"`
	Owner        string `json:"owner,omitempty"`
	ItemAddress  string `json:"itemAddress,omitempty"`
}

// Assets returns the media URLs as a synthesizer layer.
func (i *Info) Assets() nft.Assets {
	if i == nil {
		return nft.Assets{}
	}
	return nft.Assets{ImageURL: i.ImageURL, AnimationURL: i.AnimationURL}
}

// Lookup returns metadata for id, or nil when nothing is known about it.
// Callers treat errors as "unknown" and fall back to synthesized values.
type Lookup interface {
	Lookup(ctx context.Context, id nft.Identity) (*Info, error)
}

// ChainReader is the on-chain part of the lookup.
type ChainReader interface {
	ItemContent(ctx context.Context, collection string, index *big.Int) (*ton.ItemContent, error)
}

type Service struct {
	chain       ChainReader
	cache       *cache.CacheService
	collections map[string]string
	ttl         time.Duration
	timeout     time.Duration
	httpClient  *http.Client
}

func NewService(chain ChainReader, c *cache.CacheService, collections map[string]string, ttl, timeout time.Duration) *Service {
	normalized := make(map[string]string, len(collections))
	for slug, addr := range collections {
		normalized[nft.Slugify(slug)] = strings.TrimSpace(addr)
	}
	return &Service{
		chain:       chain,
		cache:       c,
		collections: normalized,
		ttl:         ttl,
		timeout:     timeout,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (s *Service) Lookup(ctx context.Context, id nft.Identity) (*Info, error) {
	collection, ok := s.collections[id.CollectionSlug]
	if !ok || s.chain == nil {
		return nil, nil
	}
	index, ok := new(big.Int).SetString(id.Number, 10)
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var info Info
	key := id.CollectionSlug + ":" + id.Number
	err := s.cache.GetOrSet(ctx, key, &info, s.ttl, func() (interface{}, error) {
		return s.fetch(ctx, collection, index)
	})
	if err != nil {
		logger.Warn().Err(err).Str("nft_id", id.NFTID).Msg("NFT info lookup failed")
		return nil, err
	}
	return &info, nil
}

func (s *Service) fetch(ctx context.Context, collection string, index *big.Int) (*Info, error) {
	item, err := s.chain.ItemContent(ctx, collection, index)
	if err != nil {
		return nil, err
	}

	info := &Info{Name: item.Name, ImageURL: item.Image, Owner: item.Owner, ItemAddress: item.Address}
	if item.URI == "" {
		return info, nil
	}

	meta, err := s.fetchMetadata(ctx, item.URI)
	if err != nil {
		return nil, err
	}
	if meta.Name != "" {
		info.Name = meta.Name
	}
	info.Description = meta.Description
	info.ImageURL = firstNonEmpty(meta.Image, info.ImageURL)
	info.AnimationURL = firstNonEmpty(meta.AnimationURL, meta.Lottie)
	return info, nil
}

type itemMetadata struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Lottie       string `json:"lottie"`
	AnimationURL string `json:"animation_url"`
}

var errMetadataStatus = errors.New("metadata endpoint returned non-200")

func (s *Service) fetchMetadata(ctx context.Context, uri string) (*itemMetadata, error) {
	if strings.HasPrefix(uri, "ipfs://") {
		uri = "https://ipfs.io/ipfs/" + strings.TrimPrefix(uri, "ipfs://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from %s", errMetadataStatus, resp.StatusCode, uri)
	}

	var meta itemMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", uri, err)
	}
	return &meta, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
