package routes

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/payflow/gateway/internal/auth"
	"github.com/payflow/gateway/internal/config"
	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/identity"
	"github.com/payflow/gateway/internal/ledger"
	"github.com/payflow/gateway/internal/middleware"
	"github.com/payflow/gateway/internal/notification"
	"github.com/payflow/gateway/internal/token"
	"github.com/payflow/gateway/internal/transactions"
	"github.com/payflow/gateway/internal/transfer"
	"github.com/payflow/gateway/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	// Repositories and services
	tokens := token.NewManager(d.Cfg)
	refreshRepo := token.NewPostgresRepository(d.DB)
	identityRepo := identity.NewPostgresRepository(d.DB)
	walletRepo := wallet.NewPostgresRepository(d.DB)
	txRepo := transactions.NewPostgresRepository(d.DB)

	balanceCache := wallet.NewCache(d.Cache, d.Cfg.BalanceCacheTTL, d.Logger)
	walletSvc := wallet.NewService(walletRepo, balanceCache)
	identitySvc := identity.NewService(identityRepo)
	authSvc := auth.NewService(identitySvc, tokens, refreshRepo, d.Logger)

	ledgerClient := ledger.NewClient(d.Cfg.LedgerURL, d.Cfg.LedgerTimeout)
	notifier := notification.NewLoggerNotifier(d.Logger)
	transferSvc := transfer.NewService(identityRepo, ledgerClient, notifier, d.Logger)

	authHandler := auth.NewHandler(authSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	transferHandler := transfer.NewHandler(transferSvc)
	userHandler := identity.NewHandler(identitySvc, walletSvc)
	txHandler := transactions.NewHandler(txRepo)

	// Health
	RegisterHealthRoutes(app, d)

	// Admission control: General gates every API route; Auth and Transfer
	// stack on top for their respective paths.
	generalLimit := middleware.RateLimit(d.Cache, middleware.GeneralPolicy, d.Logger)
	authLimit := middleware.RateLimit(d.Cache, middleware.AuthPolicy, d.Logger)
	transferLimit := middleware.RateLimit(d.Cache, middleware.TransferPolicy, d.Logger)

	api := app.Group("/api", generalLimit)

	RegisterAuthRoutes(api, authHandler, authLimit)

	// Protected routes
	authn := middleware.Auth(tokens)
	RegisterWalletRoutes(api, walletHandler, transferHandler, authn, transferLimit)
	RegisterUserRoutes(api, userHandler, authn)
	RegisterTransactionRoutes(api, txHandler, authn)

	// Root service descriptor
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": d.Cfg.AppName,
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"auth":         "/api/auth",
				"wallet":       "/api/wallet",
				"transactions": "/api/transactions",
				"user":         "/api/user",
			},
		})
	})

	// Fallback 404 in the shared taxonomy
	app.Use(func(c *fiber.Ctx) error {
		return httperr.New(http.StatusNotFound, httperr.CodeNotFound, "The requested endpoint does not exist")
	})

	return nil
}
