package main

import (
	"payportal/internal/config"  // Custom import path (Config)
	"payportal/internal/db"      // Custom import path (Database)
	"payportal/internal/logging" // Logger setup

	"github.com/sirupsen/logrus" // Structured logging
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	dsn := cfg.DSN() // Database Source Name (DSN) for MySQL connection
	if dsn == "" {
		logrus.Fatal("DB_HOST is not set")
	}
	gdb, err := db.Open(dsn) // Open a connection to the database
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err) // Log fatal error if connection fails
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err) // Log fatal error if migration fails
	}
}
