package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"anonbox/internal/config"
	"anonbox/internal/handlers"
	"anonbox/internal/logger"
	"anonbox/internal/repository"
	"anonbox/internal/repository/db"
	"anonbox/internal/server"
	"anonbox/internal/service"
	"anonbox/internal/session"
	"anonbox/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

const limiterCleanupInterval = 5 * time.Minute

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel, false).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Production)
	defer func() { _ = log.Sync() }()
	log.Infow("config_loaded", "config", cfg.String())

	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Admin.Username == "" || cfg.Admin.Password == "" {
		log.Warnw("admin credentials not configured; admin login disabled")
	}

	// JSON record files
	fs := store.NewFileStore(cfg.Storage.Dir, log.Component("store"))
	if err := fs.Init(); err != nil {
		log.Fatalw("failed to init storage", "dir", cfg.Storage.Dir, "err", err)
	}

	sessions, closeSessions, err := openSessionStore(cfg, log)
	if err != nil {
		log.Fatalw("failed to open session store", "store", cfg.Session.Store, "err", err)
	}
	defer func() {
		if cerr := closeSessions.Close(); cerr != nil {
			log.Errorw("failed to close session store", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(fs)
	services := service.NewService(repos, service.AdminCredentials{
		Username: cfg.Admin.Username,
		Password: cfg.Admin.Password,
	})
	manager := session.NewManager(sessions, session.NewTokenCodec(cfg.Session.Secret), session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Production,
	}, log.Component("session"))

	var limiter *handlers.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handlers.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	apiHandler := handlers.NewHandler(services, manager, limiter, log.Component("http"))
	apiHandler.TrustProxies(cfg.TrustedProxies)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if purger, ok := sessions.(session.Purger); ok && cfg.Session.JanitorInterval > 0 {
		go session.RunJanitor(ctx, purger, cfg.Session.JanitorInterval, log.Component("janitor"))
	}
	if limiter != nil {
		go limiter.RunCleanup(ctx, limiterCleanupInterval)
	}

	// start HTTP server
	srv := server.New(cfg.Port, apiHandler.InitRoutes())
	runHTTPServer(srv, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openSessionStore builds the backend selected by session.store.
func openSessionStore(cfg *config.Config, log *logger.Logger) (session.Store, io.Closer, error) {
	noop := closerFunc(func() error { return nil })

	switch cfg.Session.Store {
	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0o750); err != nil {
			return nil, nil, fmt.Errorf("create db dir: %w", err)
		}
		conn, err := db.InitDB(cfg.DB.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Infow("session store ready", "backend", "sqlite", "path", cfg.DB.Path)
		return repository.NewSessionSQLite(conn), conn, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Infow("session store ready", "backend", "redis", "addr", cfg.Redis.Addr)
		return repository.NewSessionRedis(client), client, nil

	default:
		log.Infow("session store ready", "backend", "memory")
		return session.NewMemoryStore(), noop, nil
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, log *logger.Logger) {
	go func() {
		log.Infow("server listening", "addr", srv.Addr())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
