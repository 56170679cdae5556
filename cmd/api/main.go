package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receptionist-platform/internal/config"
	"receptionist-platform/internal/flow"
	"receptionist-platform/internal/httpapi"
	"receptionist-platform/internal/instances"
	"receptionist-platform/internal/session"
	"receptionist-platform/internal/telephony"
	"receptionist-platform/pkg/logger"
	"receptionist-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Session store. Redis being down must not take the telephony surface
	// down with it: degrade to per-process memory and let calls proceed.
	var store session.Store
	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Warn("redis unavailable, using in-memory session store", "err", err)
		if rdb != nil {
			_ = rdb.Close()
		}
		store = session.NewMemoryStore(cfg.Session.TTL)
	} else {
		defer rdb.Close()
		store = session.NewRedisStore(rdb, session.RedisStoreConfig{
			KeyPrefix: cfg.Session.KeyPrefix,
			TTL:       cfg.Session.TTL,
		})
	}

	// Bot-instance prompts. The database is optional; without it every call
	// runs on the default prompt set.
	var repo instances.Repository
	if cfg.HasDB() {
		db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Warn("postgres unavailable, using default prompts", "err", err)
		} else {
			defer db.Close()
			repo = instances.NewPostgresRepo(db)
		}
	}

	engine := flow.NewEngine(store, repo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, httpapi.CallRouter{
		Store:           store,
		Engine:          engine,
		DefaultProvider: telephony.Provider(cfg.App.DefaultProvider),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
