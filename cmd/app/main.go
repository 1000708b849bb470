package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"gift-market-backend/docs"
	"gift-market-backend/internal/common/cache"
	"gift-market-backend/internal/common/config"
	"gift-market-backend/internal/common/logger"
	"gift-market-backend/internal/common/metrics"
	"gift-market-backend/internal/common/middleware"
	"gift-market-backend/internal/features/bot"
	botHTTP "gift-market-backend/internal/features/bot/delivery/http"
	giftHTTP "gift-market-backend/internal/features/gift/delivery/http"
	giftRedis "gift-market-backend/internal/features/gift/repository/redis"
	giftService "gift-market-backend/internal/features/gift/service"
	"gift-market-backend/internal/features/nftinfo"
	userHTTP "gift-market-backend/internal/features/user/delivery/http"
	userRedis "gift-market-backend/internal/features/user/repository/redis"
	userService "gift-market-backend/internal/features/user/service"
	"gift-market-backend/internal/platform/redis"
	"gift-market-backend/internal/platform/telegram"
	"gift-market-backend/internal/platform/ton"
)

const serviceName = "gift-market-backend"

// @title           Gift Market API
// @version         1.0
// @description     NFT gift ownership ledger and Telegram bot backend.

// @BasePath  /

// @tag.name gifts
// @tag.description Gift grants, claims and inventories

// @tag.name users
// @tag.description Bot user profiles

// @tag.name telegram
// @tag.description Telegram webhook

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(serviceName, cfg.Debug)
	logger.Info().Int("port", cfg.Server.Port).Msg("Starting gift market backend")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	registryRepo := giftRedis.NewRegistryRepository(rdb)
	ledgerRepo := giftRedis.NewLedgerRepository(rdb)
	shareRepo := giftRedis.NewShareRepository(rdb)
	profileRepo := userRedis.NewProfileRepository(rdb)
	authRepo := userRedis.NewAuthRepository(rdb)

	// Services
	authSvc := userService.NewAuthService(authRepo, cfg.Gifts.VerificationCodeTTL, cfg.Gifts.SessionTTL)
	userSvc := userService.NewUserService(profileRepo)
	lookup := newNFTInfo(ctx, cfg, rdb)
	giftSvc := giftService.NewGiftService(giftService.NewLedger(registryRepo, ledgerRepo), lookup, authSvc, m)
	shareSvc := giftService.NewShareService(shareRepo, cfg.Gifts.ShareTokenTTL, m)
	fallback := giftService.NewHTTPFallback(cfg.Server.PublicBaseURL, cfg.Gifts.FallbackTimeout)
	transferSvc := giftService.NewTransferService(shareSvc, giftSvc, fallback, m)

	messenger, err := telegram.New(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create Telegram client")
	}
	if cfg.Telegram.RegisterWebhook {
		hookURL := cfg.Server.PublicBaseURL + "/telegram/webhook"
		if err := telegram.RegisterWebhook(ctx, messenger, hookURL, cfg.Telegram.WebhookSecret); err != nil {
			logger.Error().Err(err).Str("url", hookURL).Msg("Failed to register webhook")
		}
	}
	username := telegram.NewUsername(messenger, cfg.Telegram.BotUsername, "MarketplaceBot")
	router := bot.NewRouter(messenger, username, transferSvc, userSvc, authSvc, m, cfg.Server.WebAppURL)

	// HTTP
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(cfg.Debug))
	engine.Use(middleware.Logger())
	engine.Use(middleware.Metrics(m))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.InitDataHeader, "X-Request-ID"}
	engine.Use(cors.New(corsConfig))
	engine.Use(middleware.TelegramInitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, cfg.Debug))

	giftHTTP.NewGiftHandler(giftSvc, giftHTTP.Config{
		BotSecret:   cfg.Telegram.BotSecret,
		BotToken:    cfg.Telegram.BotToken,
		InitDataTTL: cfg.Telegram.InitDataTTL,
		Debug:       cfg.Debug,
	}).RegisterRoutes(engine)
	userHTTP.NewUserHandler(userSvc, cfg.Debug).RegisterRoutes(engine)
	botHTTP.NewWebhookHandler(router, cfg.Telegram.WebhookSecret).RegisterRoutes(engine)
	registerOpsRoutes(engine, rdb)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

// newNFTInfo enables on-chain NFT lookups when collections are configured.
// It returns a nil interface otherwise, so gift flows use synthesized URLs.
func newNFTInfo(ctx context.Context, cfg *config.Config, rdb *redis.Client) nftinfo.Lookup {
	if len(cfg.NFTInfo.Collections) == 0 {
		logger.Info().Msg("NFT_COLLECTIONS is empty, NFT info lookup disabled")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	chain, err := ton.Connect(connectCtx, cfg.NFTInfo.TonLiteConfigURL)
	if err != nil {
		logger.Error().Err(err).Msg("TON lite client unavailable, NFT info lookup disabled")
		return nil
	}

	logger.Info().Int("collections", len(cfg.NFTInfo.Collections)).Msg("NFT info lookup enabled")
	c := cache.NewCacheService(rdb, "nftinfo:")
	return nftinfo.NewService(chain, c, cfg.NFTInfo.Collections, cfg.NFTInfo.CacheTTL, cfg.NFTInfo.Timeout)
}

func registerOpsRoutes(engine *gin.Engine, rdb *redis.Client) {
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	engine.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	engine.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := rdb.Ready(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unready",
				"error":   "redis unavailable",
				"details": err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	docs.SwaggerInfo.BasePath = "/"
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
