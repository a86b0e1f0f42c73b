// Package services – DirectoryService
//
// This file implements the read-only directory over the tally store used by
// the gateway's admin endpoints: paginated listing, single-user lookup, and
// the aggregate stats backing conditional (ETag) responses.
package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/repo"
)

// DirectoryRepo defines the read side of the tally store required by
// DirectoryService.
type DirectoryRepo interface {
	// GetUser fetches one record without creating it.
	GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error)
	// CountUsers returns the total number of tracked users.
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)
	// ListUsersPage returns a page of tracked users in stable order.
	ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.TrackedUser, error)
	// TrackedStats returns row count and greatest updated_at.
	TrackedStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error)
}

// DirectoryService provides paginated, read-only access to tracked users.
type DirectoryService struct {
	DB   *gorm.DB
	Repo DirectoryRepo

	// DefaultPageSize applies when the caller passes pageSize <= 0.
	DefaultPageSize int
}

// NewDirectoryService constructs a DirectoryService with a sane page size.
func NewDirectoryService(db *gorm.DB, r DirectoryRepo) *DirectoryService {
	return &DirectoryService{DB: db, Repo: r, DefaultPageSize: 20}
}

// Get returns the tracked user with the given id, or ErrNotRegistered.
func (s *DirectoryService) Get(ctx context.Context, id int64) (*domain.TrackedUser, error) {
	u, err := s.Repo.GetUser(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}
	return u, nil
}

// ListPage returns one page of tracked users plus the total count. Invalid
// page/pageSize values fall back to defaults.
func (s *DirectoryService) ListPage(ctx context.Context, page, pageSize int) ([]domain.TrackedUser, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.DefaultPageSize
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountUsers(ctx, s.DB)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.TrackedUser{}, 0, nil
	}

	items, err := s.Repo.ListUsersPage(ctx, s.DB, offset, pageSize)
	return items, total, err
}

// Stats returns the aggregate metadata used for ETag generation.
func (s *DirectoryService) Stats(ctx context.Context) (int64, *time.Time, error) {
	return s.Repo.TrackedStats(ctx, s.DB)
}
