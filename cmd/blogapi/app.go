package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okarpov/blogapi/internal/blacklist"
	"github.com/okarpov/blogapi/internal/db"
	"github.com/okarpov/blogapi/internal/handlers"
	"github.com/okarpov/blogapi/internal/logger"
	"github.com/okarpov/blogapi/internal/ratelimit"
	"github.com/okarpov/blogapi/internal/repository/postgres"
	"github.com/okarpov/blogapi/internal/service/article"
	"github.com/okarpov/blogapi/internal/service/auth"
	"github.com/okarpov/blogapi/internal/service/comment"
	"github.com/okarpov/blogapi/internal/service/toggle"
	"github.com/okarpov/blogapi/internal/service/user"
	"github.com/okarpov/blogapi/internal/tokenstore"
)

const memoryCleanupInterval = 5 * time.Minute

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	cleanup func() // periodic expiry sweep for the in-memory stores, nil when Redis backed
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Token, blacklist and limiter stores: Redis when configured,
	// in-memory otherwise
	var refreshStore tokenstore.Store
	var tokenBlacklist blacklist.Blacklist
	var limiter ratelimit.Limiter
	var cleanup func()

	if c.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}

		refreshStore = tokenstore.NewRedisStore(client)
		tokenBlacklist = blacklist.NewRedisBlacklist(client)
		limiter = ratelimit.NewRedisLimiter(client)
		logger.Info("using redis backed stores", "addr", c.RedisAddr)
	} else {
		memStore := tokenstore.NewMemoryStore()
		memBlacklist := blacklist.NewMemoryBlacklist()
		memLimiter := ratelimit.NewMemoryLimiter()

		refreshStore = memStore
		tokenBlacklist = memBlacklist
		limiter = memLimiter
		cleanup = func() {
			memStore.Cleanup()
			memBlacklist.Cleanup()
			memLimiter.Cleanup(time.Hour)
		}
		logger.Info("using in-memory stores")
	}

	// Initialize services
	authService, err := auth.NewService(auth.Config{
		SecretKey:       c.SecretKey,
		AccessTokenTTL:  c.AccessTokenTTL,
		RefreshTokenTTL: c.RefreshTokenTTL,
	}, storage.User(), refreshStore, tokenBlacklist)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	articleService := article.NewService(storage)
	commentService := comment.NewService(storage)
	likeService := toggle.NewLikeService(storage, logger)
	bookmarkService := toggle.NewBookmarkService(storage, logger)
	userService := user.NewService(storage, nil)

	mux := handlers.NewRouter(
		authService,
		articleService,
		commentService,
		likeService,
		bookmarkService,
		userService,
		limiter,
		logger,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		cleanup:    cleanup,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	if s.cleanup != nil {
		go func() {
			ticker := time.NewTicker(memoryCleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-srvCtx.Done():
					return
				case <-ticker.C:
					s.cleanup()
				}
			}
		}()
	}

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "addr", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
