// Handler wiring for the webhook gateway.
package handlers

import (
	"context"
	"time"

	"github.com/kootkounter/kootbot/internal/domain"
)

// Directory defines the read-only tracked-user operations consumed by the
// admin endpoints.
type Directory interface {
	// Get returns one tracked user, or services.ErrNotRegistered.
	Get(ctx context.Context, id int64) (*domain.TrackedUser, error)
	// ListPage returns a page of tracked users and the total count.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.TrackedUser, int64, error)
	// Stats returns the aggregate metadata backing ETag generation.
	Stats(ctx context.Context) (int64, *time.Time, error)
}

// Handlers groups the gateway's HTTP endpoints. It depends on abstract
// interfaces so transport concerns stay separate from moderation logic.
type Handlers struct {
	engine ModerationEngine
	dir    Directory
}

// New constructs a Handlers instance bound to the given engine and
// directory.
func New(engine ModerationEngine, dir Directory) *Handlers {
	return &Handlers{engine: engine, dir: dir}
}
