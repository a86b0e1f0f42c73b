// Message webhook handlers.
//
// The chat platform relay delivers each group-chat message as a POST to the
// gateway; the handler hands it to the moderation engine and returns the
// replies the relay should post back to the channel. A second endpoint
// carries the platform's ready lifecycle signal.
//
// Handlers are transport-thin: they validate the payload shape, call the
// engine, and translate results into HTTP responses.
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kootkounter/kootbot/internal/http/middleware"
	"github.com/kootkounter/kootbot/internal/services"
)

// ModerationEngine defines the engine operations consumed by the webhook
// endpoints. Implementations must be safe for interleaved invocations and
// honor the context for cancellation.
type ModerationEngine interface {
	// HandleMessage processes one inbound message and returns chat replies.
	HandleMessage(ctx context.Context, msg services.Inbound) ([]string, error)
	// HandleReady reacts to the transport's ready lifecycle event.
	HandleReady(ctx context.Context)
}

// MessageRequest is the JSON payload of one delivered chat message. The
// author id travels as a string because platform snowflakes overflow the
// integers JSON readers can be trusted with.
type MessageRequest struct {
	AuthorID   string `json:"author_id" binding:"required"`
	AuthorName string `json:"author_name"`
	Text       string `json:"text" binding:"required"`
}

// MessageResponse carries the replies the relay should post to the chat,
// in order. It is always present, possibly empty.
type MessageResponse struct {
	Replies []string `json:"replies"`
}

// PostMessage handles POST /messages: run one chat message through the
// moderation engine.
//
// Responses:
//   - 200 with the (possibly empty) reply list
//   - 400 when the payload or author id is malformed
//   - 500 when the tally store fails; the relay may redeliver
func (h *Handlers) PostMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "author_id and text are required")
		return
	}
	authorID, err := strconv.ParseInt(strings.TrimSpace(req.AuthorID), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "author_id must be a decimal user id")
		return
	}

	replies, err := h.engine.HandleMessage(c.Request.Context(), services.Inbound{
		AuthorID:   authorID,
		AuthorName: req.AuthorName,
		Text:       req.Text,
	})
	if err != nil {
		// Storage trouble: log it, reply with a generic failure. The next
		// message starts from a clean slate.
		middleware.LoggerFrom(c).Error().Err(err).Int64("author_id", authorID).Msg("moderation failed")
		fail(c, http.StatusInternalServerError, ErrCodeModerationFailed, "message could not be processed")
		return
	}
	if replies == nil {
		replies = []string{}
	}
	ok(c, http.StatusOK, MessageResponse{Replies: replies})
}

// PostReady handles POST /ready: the transport finished connecting. The
// engine only logs it; the gateway acknowledges with 204.
func (h *Handlers) PostReady(c *gin.Context) {
	h.engine.HandleReady(c.Request.Context())
	noContent(c)
}
