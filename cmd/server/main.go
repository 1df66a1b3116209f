package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/circlewallet/internal/auth"
	"github.com/mmynk/circlewallet/internal/config"
	"github.com/mmynk/circlewallet/internal/ledger"
	"github.com/mmynk/circlewallet/internal/metrics"
	"github.com/mmynk/circlewallet/internal/middleware"
	"github.com/mmynk/circlewallet/internal/service"
	"github.com/mmynk/circlewallet/internal/storage/postgres"
	"github.com/mmynk/circlewallet/internal/storage/sqlite"
	"github.com/mmynk/circlewallet/internal/storage/sqlstore"
	"github.com/mmynk/circlewallet/pkg/api/apiconnect"
	"github.com/mmynk/circlewallet/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupWithLevel(logging.ParseLevel(cfg.Log.Level))

	store, err := openStore(cfg.Database)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.Database.Driver)

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		slog.Warn("No JWT secret configured, tokens will not survive a restart")
	}
	jwtManager := auth.NewJWTManager(secret, cfg.Auth.TokenTTL)

	m := metrics.New()
	l := ledger.New(store, ledger.WithObserver(m))

	// Logging runs inside auth so it can report the caller.
	required := connect.WithInterceptors(m.Interceptor(), middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())
	optional := connect.WithInterceptors(m.Interceptor(), middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor())

	mux := http.NewServeMux()

	// Register Connect services
	identityPath, identityHandler := apiconnect.NewIdentityServiceHandler(
		service.NewIdentityService(auth.NewEphemeralAuthenticator(), jwtManager, slog.Default()), optional)
	mux.Handle(identityPath, identityHandler)

	circlePath, circleHandler := apiconnect.NewCircleServiceHandler(service.NewCircleService(l), required)
	mux.Handle(circlePath, circleHandler)

	ledgerPath, ledgerHandler := apiconnect.NewLedgerServiceHandler(service.NewLedgerService(l), required)
	mux.Handle(ledgerPath, ledgerHandler)

	mux.Handle("/metrics", m.Handler())

	// Serve static files from frontend/static
	staticDir, err := filepath.Abs(cfg.Server.StaticPath)
	if err != nil {
		slog.Error("Failed to resolve static path", "error", err)
		os.Exit(1)
	}
	slog.Info("Serving static files", "path", staticDir)

	// Handle all non-API routes with static file server
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/"+apiconnect.Package+".") {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}

		filePath := filepath.Join(staticDir, filepath.Clean(urlPath))

		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			// Circle and event pages are addressed by query params; fall back to the shell
			http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
			return
		}

		http.ServeFile(w, r, filePath)
	})

	// Add logging and CORS middleware
	loggedHandler := loggingMiddleware(corsMiddleware(mux))

	// Wrap with h2c for HTTP/2 without TLS (required for Connect streaming)
	h2cHandler := h2c.NewHandler(loggedHandler, &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	slog.Info("Connect server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(db config.DatabaseConfig) (*sqlstore.Store, error) {
	switch db.Driver {
	case config.DriverPostgres:
		return postgres.New(db.DSN)
	case config.DriverSQLite:
		return sqlite.New(db.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", db.Driver)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Failed to generate JWT secret", "error", err)
		os.Exit(1)
	}
	return hex.EncodeToString(b)
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		slog.Debug("Request received",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		)

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
