package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jmanzanog/devfolio/internal/application"
	"github.com/jmanzanog/devfolio/internal/infrastructure/config"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/memory"
	"github.com/jmanzanog/devfolio/internal/infrastructure/persistence/sqldb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSetupLogger(t *testing.T) {
	// Capture the original logger to restore it later
	originalLogger := slog.Default()
	defer slog.SetDefault(originalLogger)

	logger := setupLogger("debug")

	if logger == nil {
		t.Fatal("setupLogger returned nil logger")
	}

	if slog.Default() != logger {
		t.Error("setupLogger did not set the logger as default")
	}

	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("expected debug level to be enabled")
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			if got := parseLevel(tc.in); got != tc.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestInitializeDatabase_Memory(t *testing.T) {
	store, err := initializeDatabase(&config.Config{DBDriver: "memory"})
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}

	if _, ok := store.portfolios.(*memory.PortfolioRepository); !ok {
		t.Errorf("expected *memory.PortfolioRepository, got %T", store.portfolios)
	}
	if err := store.close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestInitializeDatabase_SQLite(t *testing.T) {
	store, err := initializeDatabase(&config.Config{DBDriver: "sqlite", DBDSN: ":memory:"})
	if err != nil {
		t.Fatalf("initializeDatabase failed: %v", err)
	}
	defer func() { _ = store.close() }()

	if _, ok := store.portfolios.(*sqldb.Repository); !ok {
		t.Errorf("expected *sqldb.Repository, got %T", store.portfolios)
	}

	// Migrations ran, so querying an absent id reaches the table.
	if _, err := store.portfolios.FindByID(context.Background(), "test-id"); err == nil {
		t.Error("expected not found error for an empty table")
	}
}

func TestInitializeDatabase_UnsupportedDriver(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "mysql", // Unsupported driver
		DBDSN:    "some-connection-string",
	}

	store, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for unsupported driver, got nil")
	}

	if store != nil {
		t.Errorf("expected nil storage, got %v", store)
	}
}

func TestInitializeDatabase_InvalidDSN(t *testing.T) {
	cfg := &config.Config{
		DBDriver: "postgres",
		DBDSN:    "invalid-connection-string",
	}

	store, err := initializeDatabase(cfg)

	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}

	if store != nil {
		t.Errorf("expected nil storage, got %v", store)
	}
}

func TestInitializeCache_Disabled(t *testing.T) {
	c, closeFn := initializeCache(&config.Config{})
	if c != nil {
		t.Errorf("expected nil cache, got %T", c)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestInitializeCache_Unreachable(t *testing.T) {
	c, closeFn := initializeCache(&config.Config{RedisAddr: "127.0.0.1:1", CacheTTL: time.Minute})
	if c != nil {
		t.Errorf("expected service to run uncached, got %T", c)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func newTestServices() (*application.PortfolioService, *application.PublicService) {
	portfolioService := application.NewPortfolioService(memory.NewPortfolioRepository(), memory.NewTemplateRepository())
	return portfolioService, application.NewPublicService(portfolioService, nil)
}

func TestBuildServer(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	portfolioService, publicService := newTestServices()
	cfg := &config.Config{
		ServerHost: "localhost",
		ServerPort: "8080",
		JWTSecret:  "secret",
	}

	server := buildServer(cfg, portfolioService, publicService)

	if server == nil {
		t.Fatal("buildServer returned nil server")
	}

	expectedAddr := "localhost:8080"
	if server.Addr != expectedAddr {
		t.Errorf("expected server address %q, got %q", expectedAddr, server.Addr)
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status code 200, got %d", w.Code)
	}

	// Portfolio routes require a token.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/portfolios", nil)
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status code 401, got %d", w.Code)
	}
}

func TestBuildServer_DifferentPorts(t *testing.T) {
	t.Setenv("GIN_MODE", "release")

	testCases := []struct {
		name string
		host string
		port string
		want string
	}{
		{
			name: "default localhost",
			host: "localhost",
			port: "8080",
			want: "localhost:8080",
		},
		{
			name: "all interfaces",
			host: "0.0.0.0",
			port: "3000",
			want: "0.0.0.0:3000",
		},
		{
			name: "custom port",
			host: "127.0.0.1",
			port: "9090",
			want: "127.0.0.1:9090",
		},
	}

	portfolioService, publicService := newTestServices()

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				ServerHost: tc.host,
				ServerPort: tc.port,
				JWTSecret:  "secret",
			}

			server := buildServer(cfg, portfolioService, publicService)

			if server.Addr != tc.want {
				t.Errorf("expected server address %q, got %q", tc.want, server.Addr)
			}
		})
	}
}

func TestApp_Shutdown(t *testing.T) {
	storageClosed, cacheClosed := false, false
	app := &App{
		Server:       &http.Server{ReadHeaderTimeout: time.Second},
		CloseStorage: func() error { storageClosed = true; return nil },
		CloseCache:   func() error { cacheClosed = true; return nil },
	}

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if !storageClosed || !cacheClosed {
		t.Errorf("expected storage and cache closed, got storage=%v cache=%v", storageClosed, cacheClosed)
	}
}

// TestMain is a special test function that runs before all tests
// We use it to setup global test configuration
func TestMain(m *testing.M) {
	// Suppress all logging during tests to reduce noise
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	os.Exit(m.Run())
}

// TestFullInitializationFlow tests the complete initialization flow
func TestFullInitializationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	defer func() {
		if err := testcontainers.TerminateContainer(pgContainer); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	cfg := &config.Config{
		DBDriver:   "postgres",
		DBDSN:      connStr,
		ServerHost: "localhost",
		ServerPort: "0",
		JWTSecret:  "secret",
	}

	store, err := initializeDatabase(cfg)
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	defer func() { _ = store.close() }()

	portfolioService := application.NewPortfolioService(store.portfolios, store.templates)
	if err := portfolioService.SeedTemplates(ctx); err != nil {
		t.Fatalf("failed to seed templates: %v", err)
	}
	publicService := application.NewPublicService(portfolioService, nil)

	server := buildServer(cfg, portfolioService, publicService)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/templates", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("templates: expected 200, got %d", w.Code)
	}
}
