// Package repo implements the tally store. This file provides a small
// aggregate query used for conditional responses (ETag generation) on the
// gateway's user listing endpoint.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/domain"
)

// TrackedStats returns aggregate metadata over the tracked_users table: the
// total number of rows and the greatest UpdatedAt among them. When nobody is
// tracked, count is 0 and maxUpdatedAt is nil.
//
// Two lightweight queries are issued; the latest timestamp is fetched with
// ORDER BY ... LIMIT 1 because SQLite's MAX() would come back as TEXT.
func TrackedStats(ctx context.Context, db *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = db.WithContext(ctx).Model(&domain.TrackedUser{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	var row struct {
		UpdatedAt time.Time
	}
	if err = db.WithContext(ctx).Model(&domain.TrackedUser{}).
		Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
