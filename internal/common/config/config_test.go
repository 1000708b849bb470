package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://market.example.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://market.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "marketplace_bot_secret", cfg.Telegram.BotSecret)
	assert.Equal(t, 24*time.Hour, cfg.Telegram.InitDataTTL)
	assert.Equal(t, 10*time.Minute, cfg.Gifts.VerificationCodeTTL)
	assert.Zero(t, cfg.Gifts.ShareTokenTTL)
	assert.Equal(t, 10*time.Second, cfg.Gifts.FallbackTimeout)
	assert.False(t, cfg.Telegram.RegisterWebhook)
}

func TestLoadWebhookRegistration(t *testing.T) {
	t.Setenv("REGISTER_WEBHOOK", "true")
	t.Setenv("WEBHOOK_SECRET", "hook-secret")
	t.Setenv("FALLBACK_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Telegram.RegisterWebhook)
	assert.Equal(t, "hook-secret", cfg.Telegram.WebhookSecret)
	assert.Equal(t, 2*time.Second, cfg.Gifts.FallbackTimeout)
}

func TestLoadCollections(t *testing.T) {
	t.Setenv("NFT_COLLECTIONS", "ionicdryer=EQAbc,plushpepe=EQDef")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"ionicdryer": "EQAbc", "plushpepe": "EQDef"}, cfg.NFTInfo.Collections)
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("PORT", "0")

	_, err := Load()
	assert.Error(t, err)
}
