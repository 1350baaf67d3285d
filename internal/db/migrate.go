package db

import (
	"payportal/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM log levels
)

// Models lists every table the sandbox store persists
func Models() []any {
	return []any{
		&domain.User{},
		&domain.LoginAttempt{},
		&domain.IssuedToken{},
		&domain.Wallet{},
		&domain.Transaction{},
		&domain.Payment{},
		&domain.IdempotencyRecord{},
		&domain.AuditLog{},
		&domain.Alert{},
		&domain.ComplianceReport{},
	}
}

// Open connects to MySQL. SQL statements are only logged at debug level.
func Open(dsn string) (*gorm.DB, error) {
	level := logger.Warn
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		level = logger.Info
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true, // Map duplicate keys to gorm.ErrDuplicatedKey
	})
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing foreign keys, constraints, columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
