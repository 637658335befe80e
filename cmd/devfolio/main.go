package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmanzanog/devfolio/internal/application"
	"github.com/jmanzanog/devfolio/internal/domain"
	"github.com/jmanzanog/devfolio/internal/infrastructure/cache"
	"github.com/jmanzanog/devfolio/internal/infrastructure/config"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/sqldb"
	httpHandler "github.com/jmanzanog/devfolio/internal/interfaces/http"
	"github.com/joho/godotenv"
)

// setupLogger configures and returns a structured logger with source information
func setupLogger(level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     parseLevel(level),
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return slog.LevelInfo
	}
	return l
}

// storage bundles the repositories of the configured backend.
type storage struct {
	portfolios domain.PortfolioRepository
	templates  domain.TemplateRepository
	close      func() error
}

// initializeDatabase sets up the database connection and runs migrations
func initializeDatabase(cfg *config.Config) (*storage, error) {
	if cfg.DBDriver == "memory" {
		slog.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			portfolios: memory.NewPortfolioRepository(),
			templates:  memory.NewTemplateRepository(),
			close:      func() error { return nil },
		}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := sqldb.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close() // Close connection if migration fails
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &storage{
		portfolios: sqldb.NewRepository(db),
		templates:  sqldb.NewTemplateRepository(db),
		close:      db.Close,
	}, nil
}

// initializeCache connects to Redis when configured. An unreachable Redis
// is logged and the service runs uncached.
func initializeCache(cfg *config.Config) (application.PortfolioCache, func() error) {
	noop := func() error { return nil }
	if !cfg.CacheEnabled() {
		return nil, noop
	}

	client, err := cache.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable, public pages are served uncached", "addr", cfg.RedisAddr, "error", err)
		return nil, noop
	}

	return cache.NewPortfolioCache(client, cfg.CacheTTL), client.Close
}

// buildServer creates and configures the HTTP server with all routes and handlers
func buildServer(cfg *config.Config, portfolioService *application.PortfolioService, publicService *application.PublicService) *http.Server {
	httpHandler.RegisterValidators()

	router := gin.Default()
	handler := httpHandler.NewHandler(portfolioService, publicService)
	auth := httpHandler.AuthMiddleware([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	httpHandler.SetupRoutes(router, handler, auth)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// App wraps the application components for easier testing
type App struct {
	Server       *http.Server
	CloseStorage func() error
	CloseCache   func() error
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if err := a.Server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := a.CloseCache(); err != nil {
		slog.Warn("Failed to close cache client", "error", err)
	}

	if err := a.CloseStorage(); err != nil {
		return fmt.Errorf("storage close error: %w", err)
	}

	return nil
}

// run contains the main application logic without os.Exit calls
// This makes it testeable
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	setupLogger(cfg.LogLevel)

	store, err := initializeDatabase(cfg)
	if err != nil {
		return fmt.Errorf("database initialization failed: %w", err)
	}
	slog.Info("Storage ready", "driver", cfg.DBDriver)

	portfolioService := application.NewPortfolioService(store.portfolios, store.templates)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer seedCancel()
	if err := portfolioService.SeedTemplates(seedCtx); err != nil {
		_ = store.close()
		return fmt.Errorf("failed to seed templates: %w", err)
	}

	portfolioCache, closeCache := initializeCache(cfg)
	publicService := application.NewPublicService(portfolioService, portfolioCache)

	server := buildServer(cfg, portfolioService, publicService)

	app := &App{
		Server:       server,
		CloseStorage: store.close,
		CloseCache:   closeCache,
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	// Wait for termination signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
		slog.Info("Received shutdown signal")
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	slog.Info("Server exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("Application error", "error", err)
		os.Exit(1)
	}
}
