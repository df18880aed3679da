package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/httpserver"
	categoryrepo "storefront/internal/repository/category"
	productrepo "storefront/internal/repository/product"
	categorysvc "storefront/internal/service/category"
	"storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	"storefront/internal/session"
	"storefront/internal/storage"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	checks := httpserver.Checks{"postgres": dbpool}
	var store storage.Store
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		store = storage.NewPostgres(dbpool, logger)
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		redisStore := storage.NewRedis(client, cfg.SessionTTL())
		checks["redis"] = redisStore
		store = redisStore
	case config.BackendSQLite:
		sqlite, err := storage.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatalf("open sqlite: %v", err)
		}
		defer sqlite.Close()
		checks["sqlite"] = sqlite
		store = sqlite
	default:
		store = storage.NewMemory()
	}
	logger.Printf("ledger storage backend=%s", cfg.StorageBackend)

	opts := session.Options{
		Store:           store,
		Strict:          cfg.StrictQuantity,
		PersistWishlist: cfg.WishlistPersist,
		IdleTTL:         cfg.SessionTTL(),
		Logger:          logger,
	}

	publisherDone := make(chan struct{})
	if cfg.EventsEnabled() {
		publisher := events.NewPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), logger)
		go func() {
			defer close(publisherDone)
			publisher.Run(ctx)
			if err := publisher.Close(); err != nil {
				logger.Printf("close event writer: %v", err)
			}
		}()
		opts.OnLoad = append(opts.OnLoad, publisher.Attach)
		logger.Printf("order events enabled topic=%s", cfg.KafkaTopic)
	} else {
		close(publisherDone)
	}

	sessions := session.NewManager(opts)
	if interval := cfg.SweepInterval(); interval > 0 {
		go sweep(ctx, sessions, interval)
	}

	productService := productsvc.New(productrepo.NewPostgres(dbpool, logger))
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))

	srv, err := httpserver.New(cfg.HTTPAddr, logger, checks, httpserver.Deps{
		ProductSvc:          productService,
		CategorySvc:         categoryService,
		CheckoutSvc:         checkout.New(logger),
		Sessions:            sessions,
		SessionCookie:       cfg.SessionCookie,
		SessionCookieSecure: cfg.SessionCookieSecure,
		SessionMaxAge:       cfg.SessionTTL(),
		CORSOrigins:         cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
	stop()
	<-publisherDone
}

func sweep(ctx context.Context, sessions *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			sessions.Sweep(now)
		}
	}
}
