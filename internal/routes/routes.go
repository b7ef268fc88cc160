package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/soko-market/soko_pay/internal/auth"
	"github.com/soko-market/soko_pay/internal/config"
	"github.com/soko-market/soko_pay/internal/currency"
	"github.com/soko-market/soko_pay/internal/events"
	"github.com/soko-market/soko_pay/internal/identity"
	"github.com/soko-market/soko_pay/internal/keylock"
	"github.com/soko-market/soko_pay/internal/ledger"
	"github.com/soko-market/soko_pay/internal/middleware"
	"github.com/soko-market/soko_pay/internal/wallet"
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
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	// Health
	RegisterHealthRoutes(app, d)

	// Stores and repositories
	var (
		currencyRepo currency.Repository
		walletStore  wallet.Store
		ledgerStore  ledger.Store
		identityRepo identity.Repository
	)
	if d.DB != nil {
		currencyRepo = currency.NewPostgresRepository(d.DB)
		walletStore = wallet.NewPostgresStore(d.DB)
		ledgerStore = ledger.NewPostgresStore(d.DB)
		identityRepo = identity.NewPostgresRepository(d.DB)
	} else {
		currencyRepo = currency.NewMemoryRepository(devCurrencies(d.Cfg.DefaultCurrency)...)
		walletStore = wallet.NewMemoryStore()
		ledgerStore = ledger.NewMemoryStore()
		identityRepo = identity.NewMemoryRepository()
	}

	// Services
	currencySvc := currency.NewService(currencyRepo)
	walletSvc := wallet.NewService(walletStore, currencySvc, ledgerStore)
	locks := keylock.New(d.Cfg.LockWait)

	var publisher events.Publisher
	if brokers := d.Cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, d.Cfg.KafkaTopic)
	} else {
		publisher = events.NewLogPublisher(d.Logger)
	}

	ledgerSvc := ledger.NewService(ledgerStore, walletSvc, locks, publisher, d.Logger)
	identitySvc := identity.NewService(identityRepo)
	tokenSvc := auth.NewService(d.Cfg, identityRepo)

	// Handlers
	authHandler := auth.NewHandler(identitySvc, tokenSvc)
	walletHandler := wallet.NewHandler(walletSvc)
	ledgerHandler := ledger.NewHandler(ledgerSvc)
	currencyHandler := currency.NewHandler(currencySvc)

	// API routes
	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(api, authHandler, rateLimiter)
	RegisterCurrencyRoutes(api, currencyHandler)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg))
	RegisterWalletRoutes(protected, walletHandler, ledgerHandler)

	return nil
}

// devCurrencies seeds the in-memory registry used without a database.
func devCurrencies(defaultCode string) []currency.Currency {
	seeds := []currency.Currency{
		{Code: "USD", Name: "US Dollar", DecimalPlaces: 2, Active: true},
		{Code: "EUR", Name: "Euro", DecimalPlaces: 2, Active: true},
		{Code: "KES", Name: "Kenyan Shilling", DecimalPlaces: 2, Active: true},
	}
	found := false
	for i := range seeds {
		if seeds[i].Code == defaultCode {
			seeds[i].IsDefault = true
			found = true
		}
	}
	if !found {
		seeds = append(seeds, currency.Currency{
			Code: defaultCode, Name: defaultCode, DecimalPlaces: 2, Active: true, IsDefault: true,
		})
	}
	return seeds
}
