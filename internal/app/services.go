package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/sneakerstore/sneakerstore/internal/analytics"
	"github.com/sneakerstore/sneakerstore/internal/auth"
	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/settings"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

// Backends holds the product, order and customer repositories.
type Backends struct {
	Products  catalog.Repository
	Orders    orders.Repository
	Customers customers.Repository
}

// MemoryBackends returns repositories preloaded with the demo catalog,
// orders and customers.
func MemoryBackends(now time.Time) Backends {
	return Backends{
		Products:  catalog.NewMemoryRepository(catalog.SeedProducts(now)),
		Orders:    orders.NewMemoryRepository(orders.SeedOrders()),
		Customers: customers.NewMemoryRepository(customers.SeedCustomers()),
	}
}

// PostgresBackends stores products and orders in PostgreSQL, creating the
// tables when missing. Customers stay in memory.
func PostgresBackends(ctx context.Context, pool *pgxpool.Pool) (Backends, error) {
	products := catalog.NewPGRepository(pool)
	if err := products.EnsureSchema(ctx); err != nil {
		return Backends{}, fmt.Errorf("app: catalog schema: %w", err)
	}
	list := orders.NewPGRepository(pool)
	if err := list.EnsureSchema(ctx); err != nil {
		return Backends{}, fmt.Errorf("app: orders schema: %w", err)
	}
	return Backends{
		Products:  products,
		Orders:    list,
		Customers: customers.NewMemoryRepository(customers.SeedCustomers()),
	}, nil
}

// Services is the wired domain layer shared by the HTTP server and the worker.
type Services struct {
	Auth       *auth.Service
	Catalog    *catalog.Service
	Cart       *cart.Service
	Orders     *orders.Service
	Customers  *customers.Service
	Settings   *settings.Service
	Analytics  *analytics.Service
	Cache      *analytics.Cache
	Linker     cart.Linker
	Idempotent *shared.IdempotencyStore
}

// ServiceOptions carries the optional collaborators of the cart.
type ServiceOptions struct {
	Notifier cart.Notifier
	Recorder cart.Recorder
}

// NewServices wires every domain service over the given backends and Redis.
func NewServices(ctx context.Context, cfg *Config, logger *slog.Logger, client *redis.Client, backends Backends, opts ServiceOptions) (*Services, error) {
	cache := analytics.NewCache(client, cfg.AnalyticsCacheTTL)

	settingsStore := settings.NewRedisStore(client)
	if err := settingsStore.SeedGoals(ctx, settings.SeedGoals()); err != nil {
		return nil, err
	}
	settingsService := settings.NewService(settingsStore, cache, logger)

	catalogService := catalog.NewService(backends.Products, cache, logger)
	customerService := customers.NewService(backends.Customers)
	orderService := orders.NewService(backends.Orders, customerService, cache, logger)

	linker := cart.Linker{Phone: cfg.OrderPhone}
	idempotency := shared.NewIdempotencyStore(client, cfg.IdempotencyTTL)
	cartService := cart.NewService(
		cart.NewRedisStore(client, cfg.CartTTL),
		catalogService,
		linker,
		cart.Options{
			Placer:      orderService,
			Notifier:    opts.Notifier,
			Recorder:    opts.Recorder,
			Idempotency: idempotency,
			Logger:      logger,
		},
	)

	analyticsService := analytics.NewService(analytics.Sources{
		Products:  catalogService,
		Orders:    orderService,
		Customers: customerService,
		Goals:     settingsService,
	}, cache, cfg.LowStockThreshold)

	authService := auth.NewService(auth.NewStaticRepository(cfg.AdminEmail, cfg.AdminName, cfg.AdminPasswordHash))

	return &Services{
		Auth:       authService,
		Catalog:    catalogService,
		Cart:       cartService,
		Orders:     orderService,
		Customers:  customerService,
		Settings:   settingsService,
		Analytics:  analyticsService,
		Cache:      cache,
		Linker:     linker,
		Idempotent: idempotency,
	}, nil
}
