package database

import (
	"testing"
	"time"

	"shopcart-service/pkg/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a fresh in-memory SQLite database with the given models
// migrated. The pool is pinned to one connection so every query sees the
// same in-memory database.
func NewTestDB(t testing.TB, models ...interface{}) *gorm.DB {
	t.Helper()

	db, err := InitDB(&config.DBConfig{
		Driver:          config.DriverSQLite,
		DBName:          ":memory:",
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
		LogLevel:        logger.Silent,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { Close(db) })

	if err := MigrateModels(db, models...); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	return db
}
