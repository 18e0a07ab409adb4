package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sneakerstore/sneakerstore/cmd/sneakerstore/cli"
	"github.com/sneakerstore/sneakerstore/internal/analytics"
	"github.com/sneakerstore/sneakerstore/internal/app"
	"github.com/sneakerstore/sneakerstore/internal/auth"
	"github.com/sneakerstore/sneakerstore/internal/cart"
	"github.com/sneakerstore/sneakerstore/internal/catalog"
	"github.com/sneakerstore/sneakerstore/internal/customers"
	"github.com/sneakerstore/sneakerstore/internal/export"
	"github.com/sneakerstore/sneakerstore/internal/observability"
	"github.com/sneakerstore/sneakerstore/internal/orders"
	"github.com/sneakerstore/sneakerstore/internal/platform/cache"
	"github.com/sneakerstore/sneakerstore/internal/platform/db"
	"github.com/sneakerstore/sneakerstore/internal/settings"
	"github.com/sneakerstore/sneakerstore/internal/shared"
	"github.com/sneakerstore/sneakerstore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobs(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := serve(ctx, stop, cfg, logger); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	backends := app.MemoryBackends(time.Now())
	if cfg.UsesPostgres() {
		pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
		if backends, err = app.PostgresBackends(ctx, pool); err != nil {
			return err
		}
	} else {
		logger.Warn("PG_DSN not set, using in-memory catalog and orders")
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	services, err := app.NewServices(ctx, cfg, logger, redisClient, backends, app.ServiceOptions{
		Notifier: jobClient,
		Recorder: metrics,
	})
	if err != nil {
		return fmt.Errorf("wire services: %w", err)
	}
	if err := services.Cache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("analytics invalidation listener", slog.Any("error", err))
	}

	// In-memory repositories are private to this process, so order
	// follow-ups must run here.
	if !cfg.UsesPostgres() {
		worker, err := app.NewWorker(cfg, logger, services, metrics.Registerer())
		if err != nil {
			return fmt.Errorf("init worker: %w", err)
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("embedded worker", slog.Any("error", err))
				stop()
			}
		}()
	}

	sessionManager := shared.NewSessionManager(redisClient, "sneakerstore_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	exporter := export.NewXLSX()

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		CSRFManager:      csrfManager,
		AuthService:      services.Auth,
		AuthHandler:      auth.NewHandler(logger, services.Auth, sessionManager, csrfManager),
		CatalogHandler:   catalog.NewHandler(logger, services.Catalog, services.Linker, exporter),
		CartHandler:      cart.NewHandler(logger, services.Cart),
		OrdersHandler:    orders.NewHandler(logger, services.Orders, exporter),
		CustomersHandler: customers.NewHandler(logger, services.Customers),
		SettingsHandler:  settings.NewHandler(logger, services.Settings),
		AnalyticsHandler: analytics.NewHandler(logger, services.Analytics),
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// runJobs implements "jobs stats" and "jobs trigger <task> [order-id]".
func runJobs(ctx context.Context, cfg *app.Config, args []string) error {
	c := cli.NewJobsCLI(cfg.RedisAddr, cfg.LowStockThreshold)
	defer func() { _ = c.Close() }()

	if len(args) == 0 {
		return errors.New("usage: sneakerstore jobs stats|scheduled|trigger <task> [order-id]")
	}
	switch args[0] {
	case "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "scheduled":
		tasks, err := c.ListScheduled(ctx, 20)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			fmt.Printf("%s %s next=%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
	case "trigger":
		if len(args) < 2 {
			return errors.New("usage: sneakerstore jobs trigger <task> [order-id]")
		}
		info, err := c.Trigger(ctx, args[1], args[2:]...)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	default:
		return fmt.Errorf("unknown jobs command %q", args[0])
	}
	return nil
}
