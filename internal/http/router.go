// Package httpapi wires the gateway transport (Gin) to the moderation
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns: correlation IDs, structured logging, panic recovery, metrics,
// rate limiting, CORS, security headers, and the webhook credential check.
//
// Design goals:
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The chat platform relay is the only writer; admin reads are separate
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/kootkounter/kootbot/internal/config"
	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/http/handlers"
	"github.com/kootkounter/kootbot/internal/http/middleware"
	"github.com/kootkounter/kootbot/internal/match"
	"github.com/kootkounter/kootbot/internal/repo"
	"github.com/kootkounter/kootbot/internal/services"
	"github.com/kootkounter/kootbot/internal/throttle"
)

// userRepoShim adapts the repository free functions to the
// services.UserRepo interface expected by the moderation engine. This keeps
// services decoupled from the concrete repo package while reusing the
// existing functions.
type userRepoShim struct{}

// GetOrCreateUser proxies repo.GetOrCreateUser.
func (userRepoShim) GetOrCreateUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	return repo.GetOrCreateUser(ctx, db, id)
}

// IncrementCounts proxies repo.IncrementCounts.
func (userRepoShim) IncrementCounts(ctx context.Context, db *gorm.DB, id int64, terms []string, displayName string) error {
	return repo.IncrementCounts(ctx, db, id, terms, displayName)
}

// DeleteUser proxies repo.DeleteUser.
func (userRepoShim) DeleteUser(ctx context.Context, db *gorm.DB, id int64) error {
	return repo.DeleteUser(ctx, db, id)
}

// ListUsers proxies repo.ListUsers.
func (userRepoShim) ListUsers(ctx context.Context, db *gorm.DB) ([]domain.TrackedUser, error) {
	return repo.ListUsers(ctx, db)
}

// IsRegistered proxies repo.IsRegistered.
func (userRepoShim) IsRegistered(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	return repo.IsRegistered(ctx, db, id)
}

// directoryRepoShim adapts the read-side repository functions to
// services.DirectoryRepo.
type directoryRepoShim struct{}

// GetUser proxies repo.GetUser.
func (directoryRepoShim) GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.TrackedUser, error) {
	return repo.GetUser(ctx, db, id)
}

// CountUsers proxies repo.CountUsers.
func (directoryRepoShim) CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountUsers(ctx, db)
}

// ListUsersPage proxies repo.ListUsersPage.
func (directoryRepoShim) ListUsersPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.TrackedUser, error) {
	return repo.ListUsersPage(ctx, db, offset, limit)
}

// TrackedStats proxies repo.TrackedStats.
func (directoryRepoShim) TrackedStats(ctx context.Context, db *gorm.DB) (int64, *time.Time, error) {
	return repo.TrackedStats(ctx, db)
}

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine. token is the webhook credential read from the token file.
//
// Middleware order matters:
//  1. otelgin: trace every request (inert until tracing is enabled)
//  2. RequestID: generate/propagate the correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after the logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per author/IP)
//  8. CORS, gzip, security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config, token string) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Chat messages are small; 256 KiB is generous.
	r.Use(limitBody(256 << 10))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByAuthorOrIP())
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Author-ID"},
			ExposeHeaders:   []string{"X-Request-ID", "Content-Length"},
			MaxAge:          12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  cfg.CORS.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Author-ID"},
			ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
			MaxAge:        12 * time.Hour,
		}))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.SecurityHeaders())

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: engine ← matcher, gate, store.
	engine := services.NewModerationService(
		db,
		userRepoShim{},
		match.New(domain.Vocabulary()),
		throttle.NewGate(cfg.WarnInterval),
		cfg.Trigger,
	)
	engine.AutoRegister = cfg.AutoRegister
	dir := services.NewDirectoryService(db, directoryRepoShim{})
	h := handlers.New(engine, dir)

	api := r.Group("/api/v1")
	{
		// Webhook deliveries require the shared credential.
		hooks := api.Group("", middleware.BearerAuth(token))
		hooks.POST("/messages", h.PostMessage)
		hooks.POST("/ready", h.PostReady)

		// Read-only admin view.
		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized payloads make downstream reads fail.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
