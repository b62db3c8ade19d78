package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.mongodb.org/mongo-driver/mongo"

	"Murmur/internal/api/middleware"
	"Murmur/internal/api/routes"
	"Murmur/internal/config"
	"Murmur/internal/core/interactions"
	"Murmur/internal/core/notifications"
	"Murmur/internal/core/statuses"
	"Murmur/internal/db/cache"
	"Murmur/internal/db/mongodb"
	"Murmur/internal/db/postgres"
)

// backend is the set of stores one storage engine provides
type backend struct {
	store         statuses.Store
	interactions  interactions.Repository
	notifications notifications.Repository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	store := b.store
	if cfg.AccountCacheTTL > 0 {
		client, err := cache.NewRistretto()
		if err != nil {
			return err
		}
		defer client.Close()
		store = cache.NewAccountCache(store, client, cfg.AccountCacheTTL, logger)
	}

	urls, err := statuses.NewURLBuilder(cfg.PublicBaseURL)
	if err != nil {
		return fmt.Errorf("failed to configure public base URL: %w", err)
	}

	// Initialize services
	notificationService := notifications.NewNotificationService(b.notifications, logger)
	interactionService := interactions.NewInteractionService(b.interactions, notificationService, logger)
	statusService := statuses.NewStatusService(store, interactionService, urls, logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTSecret, logger)

	r := chi.NewRouter()

	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	r.Use(rateLimiter.Middleware)

	routes.RegisterStatusRoutes(r, statusService, interactionService, authMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go rateLimiter.Run(stopCleanup)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Murmur API starting",
			"port", cfg.Port,
			"backend", cfg.StoreBackend,
			"base_url", cfg.PublicBaseURL,
		)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := mongodb.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		logger.Info("connected to MongoDB", "database", cfg.MongoDatabase)
		return mongoBackend(client, db), nil

	default:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to PostgreSQL")

		if !cfg.SkipMigrations {
			if err := postgres.Migrate(db); err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.Info("migrations completed")
		}
		return postgresBackend(db), nil
	}
}

func postgresBackend(db *sql.DB) *backend {
	return &backend{
		store:         postgres.NewStatusStore(db),
		interactions:  postgres.NewInteractionRepository(db),
		notifications: postgres.NewNotificationRepository(db),
		close:         func() { _ = db.Close() },
	}
}

func mongoBackend(client *mongo.Client, db *mongo.Database) *backend {
	return &backend{
		store:         mongodb.NewStatusStore(db),
		interactions:  mongodb.NewInteractionRepository(db),
		notifications: mongodb.NewNotificationRepository(db),
		close:         func() { _ = client.Disconnect(context.Background()) },
	}
}
