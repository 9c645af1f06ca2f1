package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nakawin/casino-backend/api/controllers"
	"github.com/nakawin/casino-backend/api/middleware"
	"github.com/nakawin/casino-backend/internal/auth"
	"github.com/nakawin/casino-backend/internal/inventory"
	"github.com/nakawin/casino-backend/internal/pools"
	"github.com/nakawin/casino-backend/internal/redemptions"
	"github.com/nakawin/casino-backend/internal/wallet"
	"github.com/nakawin/casino-backend/pkg/auth/session"
	"github.com/nakawin/casino-backend/pkg/config"
	"github.com/nakawin/casino-backend/pkg/db"
	"github.com/nakawin/casino-backend/pkg/enums"
	"github.com/nakawin/casino-backend/pkg/logger"
	"github.com/nakawin/casino-backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	Redis          *redis.Client
	SessionChecker session.AccessSessionChecker
	AuthService    auth.Service
	Register       auth.RegisterService
	Pools          pools.Service
	Redemptions    redemptions.Service
	Wallet         wallet.Service
	Inventory      inventory.Service
	Metrics        prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.Redis))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AdminAuthLogin(deps.AuthService, logg))
	})

	// Pool listings are public so the storefront can render before login.
	r.Route("/api/v1/pools", func(r chi.Router) {
		r.Get("/", controllers.PoolList(deps.Pools, logg))
		r.Get("/{poolId}", controllers.PoolDetail(deps.Pools, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
			r.Use(middleware.Idempotency(deps.Redis, logg))
			r.Post("/{poolId}/redeem", controllers.Redeem(deps.Redemptions, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(deps.Wallet, logg))
			r.Get("/entries", controllers.WalletEntries(deps.Wallet, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.Inventory, logg))
			r.Get("/summary", controllers.InventorySummary(deps.Inventory, logg))
			r.Post("/{itemId}/sell", controllers.InventorySell(deps.Inventory, logg))
			r.Post("/{itemId}/withdraw", controllers.InventoryWithdraw(deps.Inventory, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.RequireRole(string(enums.MemberRoleAdmin), logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/withdrawals", func(r chi.Router) {
			r.Get("/", controllers.AdminPendingWithdrawals(deps.Inventory, logg))
			r.Post("/{itemId}/complete", controllers.AdminCompleteWithdrawal(deps.Inventory, logg))
		})
		r.Post("/inventory/grant", controllers.AdminGrantItem(deps.Inventory, logg))
	})

	return r
}
