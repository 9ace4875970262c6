// Command server runs the task management API: the HTTP server, the
// async email dispatcher, the deadline scanner and the unconfirmed
// account purger, all sharing one process.
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

	"github.com/taskflow/taskflow-api/internal/api"
	"github.com/taskflow/taskflow-api/internal/api/middleware"
	"github.com/taskflow/taskflow-api/internal/config"
	"github.com/taskflow/taskflow-api/internal/platform/cache"
	"github.com/taskflow/taskflow-api/internal/platform/logger"
	"github.com/taskflow/taskflow-api/internal/platform/mailer"
	"github.com/taskflow/taskflow-api/internal/platform/postgres"
	"github.com/taskflow/taskflow-api/internal/service/auth"
	"github.com/taskflow/taskflow-api/internal/service/permission"
	"github.com/taskflow/taskflow-api/internal/service/verification"
	"github.com/taskflow/taskflow-api/internal/task"
)

// shutdownTimeout bounds how long graceful shutdown may take before the
// server is torn down forcibly.
const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server)
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.Bool("debug", cfg.Server.Debug))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database ready")

	// Verification tokens live in Redis when configured; the in-process
	// cache keeps single-node deployments dependency-free.
	var tokenCache cache.Cache
	if cfg.Redis.Addr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisCache.Close()
		tokenCache = redisCache
		log.Info("using redis verification token cache", slog.String("addr", cfg.Redis.Addr))
	} else {
		tokenCache = cache.NewMemoryCache()
		log.Warn("using in-process verification token cache; tokens do not survive restarts")
	}

	userStore := postgres.NewPostgresUserStore(db)
	taskStore := postgres.NewPostgresTaskStore(db)
	commentStore := postgres.NewPostgresCommentStore(db)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create JWT service: %w", err)
	}
	tokenStore := verification.NewTokenStore(tokenCache, cfg.Auth.VerificationTokenTTL())
	resetTokens := auth.NewResetTokenGenerator(cfg.Auth.JWTSecret, cfg.Auth.ResetTokenLifetime())

	sender, err := mailer.NewSMTPSender(cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}
	renderer := mailer.NewRenderer()

	dispatcher := task.NewDispatcher(sender, renderer,
		task.DispatcherConfigFromNotification(cfg.Notification), log)
	dispatcher.Start()
	defer dispatcher.Stop()

	scanner := task.NewDeadlineScanner(taskStore, userStore, sender, renderer,
		cfg.Notification.ScanInterval, cfg.Notification.DeadlineWindow, log)
	scanner.Start()
	defer scanner.Stop()

	purger := task.NewUnconfirmedPurger(userStore,
		cfg.Notification.PurgeInterval, cfg.Notification.PurgeUnconfirmedAge, log)
	purger.Start()
	defer purger.Stop()

	authHandler := api.NewAuthHandler(
		userStore,
		jwtService,
		auth.NewBcryptVerifier(),
		tokenStore,
		resetTokens,
		dispatcher,
		&cfg.Auth,
		&cfg.Server,
	)
	engine := permission.NewEngine()
	taskHandler := api.NewTaskHandler(taskStore, commentStore, engine)
	commentHandler := api.NewCommentHandler(commentStore, engine)
	authMW := middleware.NewAuthMiddleware(jwtService, userStore, cfg.Auth.AccessCookieName)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(authHandler, taskHandler, commentHandler, authMW),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("server stopped")
	return nil
}
