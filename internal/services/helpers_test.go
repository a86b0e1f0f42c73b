package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/repo"
)

// openEngineDB opens a throwaway migrated database for end-to-end service
// tests that exercise the real repository.
func openEngineDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// gormUserRepo proxies the repository free functions, mirroring the shim the
// HTTP router wires in production.
type gormUserRepo struct{}

func (gormUserRepo) GetOrCreateUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	return repo.GetOrCreateUser(ctx, db, id)
}

func (gormUserRepo) IncrementCounts(ctx context.Context, db *gorm.DB, id int64, terms []string, displayName string) error {
	return repo.IncrementCounts(ctx, db, id, terms, displayName)
}

func (gormUserRepo) DeleteUser(ctx context.Context, db *gorm.DB, id int64) error {
	return repo.DeleteUser(ctx, db, id)
}

func (gormUserRepo) ListUsers(ctx context.Context, db *gorm.DB) ([]domain.TrackedUser, error) {
	return repo.ListUsers(ctx, db)
}

func (gormUserRepo) IsRegistered(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	return repo.IsRegistered(ctx, db, id)
}

// gormDirectoryRepo is the read-side twin of gormUserRepo.
type gormDirectoryRepo struct{}

func (gormDirectoryRepo) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	return repo.GetUser(ctx, db, id)
}

func (gormDirectoryRepo) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}

func (gormDirectoryRepo) ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.TrackedUser, error) {
	return repo.ListUsersPage(ctx, db, offset, limit)
}

func (gormDirectoryRepo) TrackedStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.TrackedStats(ctx, db)
}
