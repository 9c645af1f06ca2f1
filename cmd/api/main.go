package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nakawin/casino-backend/api/routes"
	"github.com/nakawin/casino-backend/internal/auth"
	"github.com/nakawin/casino-backend/internal/draw"
	"github.com/nakawin/casino-backend/internal/inventory"
	"github.com/nakawin/casino-backend/internal/pools"
	"github.com/nakawin/casino-backend/internal/redemptions"
	"github.com/nakawin/casino-backend/internal/users"
	"github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/auth/session"
	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db"
	"github.com/nakawin/casino-backend/pkg/instance"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/metrics"
	"github.com/nakawin/casino-backend/pkg/migrate"
	"github.com/nakawin/casino-backend/pkg/outbox"
	"github.com/nakawin/casino-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	userRepo := users.NewRepository(dbClient.DB())

	walletService, err := wallet.NewService(wallet.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	poolService, err := pools.NewService(pools.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create pool service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	inventoryService, err := inventory.NewService(inventory.Deps{
		DB:     dbClient,
		Repo:   inventory.NewRepository(dbClient.DB()),
		Wallet: walletService,
		Users:  userRepo,
		Events: outboxService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()

	redemptionService, err := redemptions.NewService(redemptions.Deps{
		DB:         dbClient,
		Pools:      poolService,
		Engine:     draw.NewEngine(),
		Wallet:     walletService,
		Inventory:  inventory.NewRepository(dbClient.DB()),
		Metrics:    metrics.NewRedemptionMetrics(registry),
		Logger:     logg,
		MaxRetries: cfg.Rewards.MaxRedeemRetries,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create redemption service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterServiceWithDB(
		dbClient,
		walletService,
		sessionManager,
		cfg.Password,
		cfg.JWT,
		cfg.Rewards,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:         cfg,
			Logger:         logg,
			DBPinger:       dbClient,
			Redis:          redisClient,
			SessionChecker: sessionManager,
			AuthService:    authService,
			Register:       registerService,
			Pools:          poolService,
			Redemptions:    redemptionService,
			Wallet:         walletService,
			Inventory:      inventoryService,
			Metrics:        registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
