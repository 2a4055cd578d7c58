package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/sirpyerre/admin-console/internal/api"
	"github.com/sirpyerre/admin-console/internal/api/handler"
	"github.com/sirpyerre/admin-console/internal/backend"
	"github.com/sirpyerre/admin-console/internal/core/ports"
	"github.com/sirpyerre/admin-console/internal/core/service"
	"github.com/sirpyerre/admin-console/internal/infrastructure/db/memory"
	"github.com/sirpyerre/admin-console/internal/infrastructure/db/redis"
	"github.com/sirpyerre/admin-console/internal/pkg/config"
	"github.com/sirpyerre/admin-console/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Session store ---
	var (
		store ports.SessionStore
		rdb   *goredis.Client
	)
	switch cfg.Session.Store {
	case "redis":
		var err error
		rdb, err = redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connection failed")
		}
		defer rdb.Close()
		store = redis.NewSessionStore(rdb, cfg.Session.TTL)
	case "memory":
		store = memory.NewSessionStore(cfg.Session.TTL)
		log.Warn().Msg("using in-memory session store, sessions will not survive restarts")
	default:
		log.Fatal().Str("store", cfg.Session.Store).Msg("unknown session store")
	}

	// --- Backend client and services ---
	client := backend.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, log)
	sessions := service.NewSessionService(client.Auth(), client.Users(), store, log)

	e, err := api.NewRouter(api.RouterConfig{
		Sessions:   sessions,
		Users:      client.Users(),
		Categories: client.Categories(),
		Redis:      rdb,
		Cookie: handler.CookieConfig{
			Name:   cfg.Session.CookieName,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.CookieSecure,
		},
		Log: log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.URL).Msg("console starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("console shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}
