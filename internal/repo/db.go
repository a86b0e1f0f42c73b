// Package repo implements the tally store: durable persistence for tracked
// users and their per-term counters, backed by GORM over SQLite (pure Go
// driver). This file contains database bootstrapping and schema migration.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/kootkounter/kootbot/internal/domain"
)

// OpenSQLite opens (or creates) the bot's SQLite database and applies the
// PRAGMAs the store relies on. WAL journaling plus a busy timeout let the
// dispatcher run interleaved commits without immediate SQLITE_BUSY failures.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early with a sensible error when the parent directory is missing,
	// instead of the driver's opaque "out of memory (14)".
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Span per query when tracing is enabled; inert under the default
	// no-op tracer provider. Prometheus covers metrics.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// A chat bot's write load is tiny; a small pool keeps SQLite happy.
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the tally store schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.TrackedUser{})
}
