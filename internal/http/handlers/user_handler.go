// Tracked-user admin endpoints.
//
// These give operators a read-only JSON view over the tally store without
// going through the chat "show" command:
//   - GET /users        (paginated listing, ETag support)
//   - GET /users/:id    (single record)
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kootkounter/kootbot/internal/domain"
	"github.com/kootkounter/kootbot/internal/http/middleware"
	"github.com/kootkounter/kootbot/internal/services"
	"github.com/kootkounter/kootbot/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListUsersResponse wraps a page of tracked users and pagination info.
type ListUsersResponse struct {
	Users      []domain.TrackedUser `json:"users"`
	Pagination Pagination           `json:"pagination"`
}

// clampPagination parses and bounds the page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), 1)
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// ListUsers handles GET /users.
//
// The response carries a weak ETag derived from the row count and the
// greatest updated_at; a matching If-None-Match short-circuits to 304
// before any rows are fetched.
func (h *Handlers) ListUsers(c *gin.Context) {
	count, maxUpdated, err := h.dir.Stats(c.Request.Context())
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("user stats failed")
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list tracked users")
		return
	}

	etag := usersETag(count, maxUpdated)
	c.Header("ETag", etag)
	if match := c.GetHeader("If-None-Match"); match != "" && strings.Contains(match, etag) {
		c.Status(http.StatusNotModified)
		return
	}

	page, pageSize := clampPagination(c)
	users, total, err := h.dir.ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("user listing failed")
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list tracked users")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListUsersResponse{
		Users: users,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetUser handles GET /users/:id.
func (h *Handlers) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "id must be a decimal user id")
		return
	}

	u, err := h.dir.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotRegistered) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "user is not tracked")
			return
		}
		middleware.LoggerFrom(c).Error().Err(err).Int64("id", id).Msg("user lookup failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load user")
		return
	}
	ok(c, http.StatusOK, u)
}

// usersETag renders the weak validator for the current directory state.
func usersETag(count int64, maxUpdated *time.Time) string {
	if maxUpdated == nil {
		return fmt.Sprintf(`W/"users-%d-0"`, count)
	}
	return fmt.Sprintf(`W/"users-%d-%d"`, count, maxUpdated.UnixNano())
}
