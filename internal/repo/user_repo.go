// Package repo implements the tally store. This file provides the repository
// functions for TrackedUser records.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no moderation policy, only CRUD
// persistence.
//
// Error semantics:
//   - When a mutation targets an unregistered id, functions return
//     ErrNotFound (an alias of gorm.ErrRecordNotFound).
//   - DeleteUser is the deliberate exception: removing an unknown id is a
//     no-op success, so unregistration is idempotent.
//   - On backend failures (commit errors, connectivity, timeouts) the raw
//     gorm error is propagated; callers treat it as a storage error.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/domain"
)

// ErrNotFound is returned when a mutation targets an id that was never
// registered (or was unregistered). It aliases gorm.ErrRecordNotFound for
// consistency across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrUnknownTerm is returned when an increment names a term outside the
// canonical vocabulary. This is a programming error, not user input: the
// matcher can only ever emit vocabulary terms.
var ErrUnknownTerm = errors.New("term is not part of the vocabulary")

// GetOrCreateUser returns the tracked record for id, creating it with every
// counter at zero and the placeholder display name when absent. The create
// is committed before the function returns. Calling it again without an
// intervening delete returns the existing record unchanged.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	u := domain.TrackedUser{ID: id}
	err := db.WithContext(ctx).
		Where(domain.TrackedUser{ID: id}).
		Attrs(domain.TrackedUser{DisplayName: domain.DefaultDisplayName}).
		FirstOrCreate(&u).Error
	if err == nil {
		return &u, nil
	}

	// Two first-contact messages can race the insert; the loser re-reads the
	// row the winner committed.
	var existing domain.TrackedUser
	if ferr := db.WithContext(ctx).First(&existing, "id = ?", id).Error; ferr == nil {
		return &existing, nil
	}
	return nil, err
}

// GetUser fetches the tracked record for id without creating it. Returns
// ErrNotFound when id is not registered.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	var u domain.TrackedUser
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// IncrementCounts adds one to id's counter for every entry in terms
// (duplicate terms count multiple times) and refreshes the display name in
// the same statement when a non-blank one is supplied.
//
// The counters are bumped with a single relative UPDATE
// (col = col + n), so concurrent increments for the same id never lose
// updates and a failed commit leaves no partial counter changes behind.
//
// Returns ErrNotFound when id is not registered and ErrUnknownTerm when a
// term has no counter column.
func IncrementCounts(ctx context.Context, db *gorm.DB, id int64, terms []string, displayName string) error {
	deltas := make(map[string]int64, len(terms))
	for _, t := range terms {
		col, ok := domain.CounterColumn(t)
		if !ok {
			return ErrUnknownTerm
		}
		deltas[col]++
	}
	if len(deltas) == 0 {
		return nil
	}

	updates := make(map[string]any, len(deltas)+1)
	for col, n := range deltas {
		updates[col] = gorm.Expr(col+" + ?", n)
	}
	if name := strings.TrimSpace(displayName); name != "" {
		updates["display_name"] = name
	}

	res := db.WithContext(ctx).
		Model(&domain.TrackedUser{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes id's record together with its tallies. Deleting an id
// that was never registered is a no-op success; unregistration is
// idempotent by contract.
func DeleteUser(ctx context.Context, db *gorm.DB, id int64) error {
	return db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&domain.TrackedUser{}).Error
}

// ListUsers returns every tracked user ordered by id ascending. The order
// is stable across calls; the "show" command relies on it.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.TrackedUser, error) {
	var out []domain.TrackedUser
	err := db.WithContext(ctx).
		Order("id asc").
		Find(&out).Error
	return out, err
}

// CountUsers returns the total number of tracked users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.TrackedUser{}).
		Count(&total).Error
	return total, err
}

// ListUsersPage returns a page of tracked users ordered by id ascending.
// Use CountUsers to obtain the total for pagination metadata.
func ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.TrackedUser, error) {
	var out []domain.TrackedUser
	err := db.WithContext(ctx).
		Order("id asc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// IsRegistered reports whether id has a tracked record. It is the cheap
// existence check gating whether a sender's text is scanned at all.
func IsRegistered(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.TrackedUser{}).
		Where("id = ?", id).
		Count(&n).Error
	return n > 0, err
}
