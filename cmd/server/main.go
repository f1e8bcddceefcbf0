package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
	"github.com/hongminglow/loyalty-console/internal/config"
	"github.com/hongminglow/loyalty-console/internal/http/respond"
	"github.com/hongminglow/loyalty-console/internal/observability/metrics"
	"github.com/hongminglow/loyalty-console/internal/server"
	"github.com/hongminglow/loyalty-console/internal/session"
	postgres "github.com/hongminglow/loyalty-console/internal/storage/postgres"
	redisstore "github.com/hongminglow/loyalty-console/internal/storage/redis"
	"github.com/hongminglow/loyalty-console/pkg/logging"
)

const purgeInterval = 10 * time.Minute

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	respond.SetLogger(logger)

	keys, err := auth.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		logger.Fatal("derive session keys", zap.Error(err))
	}
	tokens := auth.NewTokenManager(keys.Signing, "loyalty-console", cfg.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions, closeStore, err := openSessionStore(ctx, cfg, tokens, keys, logger)
	if err != nil {
		logger.Fatal("init session store", zap.String("store", cfg.SessionStore), zap.Error(err))
	}
	defer closeStore()

	consoleMetrics := metrics.NewConsoleMetrics(nil)
	client := backend.NewClient(backend.Config{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.APITimeout,
		Observer: consoleMetrics,
	})

	srv, err := server.New(cfg, server.Deps{
		Backend:  client,
		Sessions: sessions,
		Tokens:   tokens,
		Metrics:  consoleMetrics,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("build server", zap.Error(err))
	}

	go func() {
		logger.Info("loyalty console listening",
			zap.String("addr", cfg.HTTPAddress()),
			zap.String("api", cfg.APIBaseURL),
			zap.String("session_store", cfg.SessionStore),
		)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
}

// openSessionStore picks the session backend named by SESSION_STORE.
func openSessionStore(ctx context.Context, cfg config.Config, tokens *auth.TokenManager, keys auth.Keys, logger *logging.Logger) (session.Store, func(), error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		records := redisstore.NewSessionStore(client)
		return session.NewServerStore(records, tokens, cfg.CookieSecure), func() { _ = client.Close() }, nil

	case config.StorePostgres:
		records, err := postgres.NewSessionStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		go purgeExpired(ctx, records, logger)
		return session.NewServerStore(records, tokens, cfg.CookieSecure), records.Close, nil

	default:
		return session.NewCookieStore(tokens, auth.NewSealer(keys.Sealing), cfg.CookieSecure), func() {}, nil
	}
}

// purgeExpired deletes lapsed session rows until ctx is done. Redis expires its keys itself.
func purgeExpired(ctx context.Context, store *postgres.Store, logger *logging.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired sessions", zap.Int64("rows", n))
			}
		}
	}
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
