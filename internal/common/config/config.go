package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port          int    `env:"PORT" envDefault:"8080"`
		Origin        string `env:"ORIGIN" envDefault:"*"`
		PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
		WebAppURL     string `env:"WEBAPP_URL" envDefault:"https://marketplace-bot.vercel.app/"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		// Empty token disables outbound Bot API calls and init-data validation.
		BotToken      string        `env:"BOT_TOKEN"`
		BotUsername   string        `env:"BOT_USERNAME"`
		BotSecret     string        `env:"BOT_SECRET" envDefault:"marketplace_bot_secret"`
		WebhookSecret string        `env:"WEBHOOK_SECRET"`
		InitDataTTL   time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`

		// Calls setWebhook with PUBLIC_BASE_URL on startup.
		RegisterWebhook bool `env:"REGISTER_WEBHOOK" envDefault:"false"`
	}

	Gifts struct {
		ShareTokenTTL       time.Duration `env:"SHARE_TOKEN_TTL" envDefault:"0"`
		VerificationCodeTTL time.Duration `env:"VERIFICATION_CODE_TTL" envDefault:"10m"`
		SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"720h"`
		FallbackTimeout     time.Duration `env:"FALLBACK_TIMEOUT" envDefault:"10s"`
	}

	NFTInfo struct {
		TonLiteConfigURL string            `env:"TON_LITE_CONFIG_URL" envDefault:"https://ton.org/global.config.json"`
		Collections      map[string]string `env:"NFT_COLLECTIONS" envSeparator:"," envKeyValSeparator:"="`
		CacheTTL         time.Duration     `env:"NFT_INFO_CACHE_TTL" envDefault:"1h"`
		Timeout          time.Duration     `env:"NFT_INFO_TIMEOUT" envDefault:"3s"`
	}
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// .env is optional; production sets variables directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.Server.PublicBaseURL = strings.TrimRight(cfg.Server.PublicBaseURL, "/")
	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("PORT must be greater than 0")
	}

	return cfg, nil
}
