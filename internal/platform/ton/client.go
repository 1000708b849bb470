package ton

import (
	"context"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/nft"

	"gift-market-backend/internal/common/logger"
)

// ItemContent is what the chain knows about one collection item.
type ItemContent struct {
	Address     string
	Owner       string
	Initialized bool
	// URI of the offchain metadata JSON; empty for fully onchain items.
	URI   string
	Name  string
	Image string
}

// Client reads NFT items through a pool of lite servers.
type Client struct {
	api ton.APIClientWrapped
}

// Connect builds the lite server pool from a global config URL.
func Connect(ctx context.Context, configURL string) (*Client, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("connect lite servers: %w", err)
	}

	api := ton.NewAPIClient(pool, ton.ProofCheckPolicyFast).WithRetry()
	logger.Info().Str("config_url", configURL).Msg("TON lite client connected")
	return &Client{api: api}, nil
}

// ItemContent resolves item index of collection and its metadata location.
func (c *Client) ItemContent(ctx context.Context, collection string, index *big.Int) (*ItemContent, error) {
	collectionAddr, err := address.ParseAddr(collection)
	if err != nil {
		return nil, fmt.Errorf("parse collection address %q: %w", collection, err)
	}

	coll := nft.NewCollectionClient(c.api, collectionAddr)
	itemAddr, err := coll.GetNFTAddressByIndex(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("item %s of %s: %w", index, collection, err)
	}

	data, err := nft.NewItemClient(c.api, itemAddr).GetNFTData(ctx)
	if err != nil {
		return nil, fmt.Errorf("item data %s: %w", itemAddr, err)
	}

	out := &ItemContent{Address: itemAddr.String(), Initialized: data.Initialized}
	if data.OwnerAddress != nil {
		out.Owner = data.OwnerAddress.String()
	}
	if !data.Initialized {
		return out, nil
	}

	content, err := coll.GetNFTContent(ctx, data.Index, data.Content)
	if err != nil {
		return nil, fmt.Errorf("item content %s: %w", itemAddr, err)
	}

	switch v := content.(type) {
	case *nft.ContentOffchain:
		out.URI = v.URI
	case *nft.ContentSemichain:
		out.URI = v.URI
		out.Name, out.Image = v.Name, v.Image
	case *nft.ContentOnchain:
		out.URI = v.GetAttribute("uri")
		out.Name, out.Image = v.Name, v.Image
	}
	return out, nil
}
