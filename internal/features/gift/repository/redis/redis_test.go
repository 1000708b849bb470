package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gift-market-backend/internal/features/gift/models"
	"gift-market-backend/internal/features/gift/repository"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRegistryAdmitIsSingleUse(t *testing.T) {
	client, _ := newTestClient(t)
	reg := NewRegistryRepository(client)
	ctx := context.Background()
	key := models.RegistryKey("IonicDryer-7561", "200")

	ok, err := reg.Admit(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.Admit(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := reg.Contains(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, reg.Release(ctx, key))
	exists, err = reg.Contains(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRegistryConcurrentAdmit(t *testing.T) {
	client, _ := newTestClient(t)
	reg := NewRegistryRepository(client)
	ctx := context.Background()

	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := reg.Admit(ctx, "X-1_200")
			if err == nil && ok {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted)
	size, err := reg.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestLedgerKeepsInsertionOrder(t *testing.T) {
	client, _ := newTestClient(t)
	ledger := NewLedgerRepository(client)
	ctx := context.Background()

	for _, id := range []string{"A-1", "B-2", "C-3"} {
		require.NoError(t, ledger.Append(ctx, &models.GiftRecord{NFTID: id, TelegramID: "200", Quantity: 1, Phone: "+1555"}))
	}

	gifts, err := ledger.ListByOwner(ctx, "200")
	require.NoError(t, err)
	require.Len(t, gifts, 3)
	assert.Equal(t, "A-1", gifts[0].NFTID)
	assert.Equal(t, "C-3", gifts[2].NFTID)

	again, err := ledger.ListByOwner(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, gifts, again)

	none, err := ledger.ListByOwner(ctx, "999")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLedgerListByPhoneAggregatesOwners(t *testing.T) {
	client, _ := newTestClient(t)
	ledger := NewLedgerRepository(client)
	ctx := context.Background()

	require.NoError(t, ledger.Append(ctx, &models.GiftRecord{NFTID: "A-1", TelegramID: "100", Quantity: 2, Phone: "+1555"}))
	require.NoError(t, ledger.Append(ctx, &models.GiftRecord{NFTID: "B-1", TelegramID: "200", Quantity: 1, Phone: "+1555"}))
	require.NoError(t, ledger.Append(ctx, &models.GiftRecord{NFTID: "C-1", TelegramID: "200", Quantity: 1, Phone: "+1999"}))

	gifts, err := ledger.ListByPhone(ctx, "+1555")
	require.NoError(t, err)
	assert.Len(t, gifts, 2)
	assert.Equal(t, 3, models.TotalQuantity(gifts))

	owners, err := ledger.Owners(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []models.TelegramID{"100", "200"}, owners)
}

func TestShareAcceptOnce(t *testing.T) {
	client, _ := newTestClient(t)
	shares := NewShareRepository(client)
	ctx := context.Background()

	share := &models.ShareToken{Token: "abc", NFTLink: "https://t.me/nft/IonicDryer-7561", CreatorTelegramID: "100"}
	require.NoError(t, shares.Create(ctx, share, 0))

	ok, err := shares.Accept(ctx, "abc", "200")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = shares.Accept(ctx, "abc", "300")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := shares.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, got.IsReceived)
	assert.Equal(t, models.TelegramID("200"), got.ReceiverTelegramID)
}

func TestShareUnknownToken(t *testing.T) {
	client, _ := newTestClient(t)
	shares := NewShareRepository(client)
	ctx := context.Background()

	_, err := shares.Get(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := shares.Accept(ctx, "missing", "200")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestShareTTLStopsAfterAccept(t *testing.T) {
	client, mr := newTestClient(t)
	shares := NewShareRepository(client)
	ctx := context.Background()

	require.NoError(t, shares.Create(ctx, &models.ShareToken{Token: "t1", CreatorTelegramID: "100"}, time.Hour))
	require.NoError(t, shares.Create(ctx, &models.ShareToken{Token: "t2", CreatorTelegramID: "100"}, time.Hour))

	ok, err := shares.Accept(ctx, "t1", "200")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Hour)

	_, err = shares.Get(ctx, "t1")
	assert.NoError(t, err)
	_, err = shares.Get(ctx, "t2")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
