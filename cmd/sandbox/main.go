package main

import (
	"context"   // Shutdown timeout
	"errors"    // Error matching
	"net/http"  // HTTP server
	"os"        // Signals
	"os/signal" // Graceful shutdown
	"syscall"   // SIGTERM
	"time"      // Timeouts

	"payportal/internal/config"  // Custom package for configuration
	"payportal/internal/db"      // Database connection and migration
	"payportal/internal/logging" // Logger setup
	"payportal/internal/sandbox" // Sandbox backend

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logrus for structured logging
)

// Main function to set up and run the sandbox backend
func main() {
	cfg := config.LoadConfig()                 // Load configuration
	logging.Setup(cfg.LogLevel, cfg.LogFormat) // Setup logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Use MySQL when a database is configured, memory otherwise
	var store sandbox.Store = sandbox.NewMemoryStore()
	if dsn := cfg.DSN(); dsn != "" {
		gdb, err := db.Open(dsn)
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		if err := db.Migrate(gdb); err != nil {
			logrus.Fatalf("migration failed: %v", err)
		}
		store = sandbox.NewGormStore(gdb)
		logrus.WithField("host", cfg.DBHost).Info("Using MySQL store")
	} else {
		logrus.Info("Using in-memory store")
	}

	svc := sandbox.NewService(store, cfg.JWTSecret)
	seed, err := sandbox.Seed(ctx, svc)
	if err != nil {
		logrus.Fatalf("failed to seed sandbox: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"admin":        sandbox.DemoAdminEmail, // Demo admin login
		"user":         sandbox.DemoUserEmail,  // Demo user login
		"user_wallets": seed.UserWallets,       // Funded demo wallets
	}).Info("Sandbox seeded")

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := sandbox.NewRouter(svc) // Gin router instance
	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.Info("Server running on " + cfg.AppPort) // Log server start
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutdown failed: %v", err)
	}
	logrus.Info("Server stopped")
}
