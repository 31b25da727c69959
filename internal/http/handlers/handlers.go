// Handler wiring and shared service contracts.
//
// Handlers are transport-thin: they validate input, call application services
// or read the poll snapshot, and translate results into HTTP responses. All
// business rules (status transitions, write-back addressing, validation) live
// in the services layer.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/http/middleware"
	"github.com/whitesmile/frontdesk-backend/internal/poller"
	"github.com/whitesmile/frontdesk-backend/internal/repo"
	"github.com/whitesmile/frontdesk-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// StateReader exposes the poll-cycle state consumed by read endpoints.
//
// Implementations must be safe for concurrent use; Snapshot returns copies.
type StateReader interface {
	Snapshot() poller.Snapshot
	Alert() (classify.RecallAlert, bool)
	DismissAlert()
}

// OutboxActions defines the outbox mutations consumed by HTTP handlers.
type OutboxActions interface {
	// MarkOpened records that the WhatsApp conversation was opened.
	MarkOpened(ctx context.Context, id string) (domain.OutboxMessage, error)
	// MarkSent confirms the message went out.
	MarkSent(ctx context.Context, id string) (domain.OutboxMessage, error)
	// MarkNotSent undoes an accidental open.
	MarkNotSent(ctx context.Context, id string) (domain.OutboxMessage, error)
	// UpdateDetails corrects row fields; blocking write.
	UpdateDetails(ctx context.Context, id string, upd services.DetailsUpdate) (domain.OutboxMessage, error)
}

// FollowupActions defines the follow-up mutations consumed by HTTP handlers.
type FollowupActions interface {
	// Close marks a follow-up handled.
	Close(ctx context.Context, kind domain.FollowupKind, id, handledBy, note string) (domain.FollowupRow, error)
}

// RecallActions defines the recall mutations consumed by HTTP handlers.
type RecallActions interface {
	// SetStatus moves a recall through its lifecycle.
	SetStatus(ctx context.Context, id string, status domain.RecallStatus) (domain.RecallRow, error)
}

// Handlers groups the HTTP endpoints for the dashboard API.
type Handlers struct {
	state   StateReader
	outbox  OutboxActions
	fu      FollowupActions
	recalls RecallActions

	// DB and IdemTTL back the idempotency replay store; DB may be nil in
	// tests, which disables recording.
	DB      *gorm.DB
	IdemTTL time.Duration
}

// New constructs a Handlers instance bound to the given state and services.
func New(state StateReader, outbox OutboxActions, fu FollowupActions, recalls RecallActions) *Handlers {
	return &Handlers{state: state, outbox: outbox, fu: fu, recalls: recalls}
}

// userID extracts the operator identity from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "front-desk".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "front-desk"
}

// failService maps service-layer sentinel errors onto the HTTP error
// envelope. Unknown errors are treated as a failed upstream write.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRowNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "row not found")
	case errors.Is(err, services.ErrInvalidTransition):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrInvalidStatus):
		fail(c, http.StatusBadRequest, ErrCodeInvalidStatus, err.Error())
	case errors.Is(err, services.ErrInvalidPhone):
		fail(c, http.StatusBadRequest, ErrCodeInvalidPhone, err.Error())
	case errors.Is(err, services.ErrMissingAppointmentID):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpdateFailed, "backend update failed")
	}
}

// recordIdempotency stores a completed mutation keyed by the request's
// Idempotency-Key so the validator middleware can flag replays. Best effort:
// storage failures only cost replay detection.
func (h *Handlers) recordIdempotency(c *gin.Context, tab, rowID string, status int) {
	if h.DB == nil {
		return
	}
	key, present := middleware.GetIdempotencyKey(c)
	if !present {
		return
	}
	ttl := h.IdemTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(c.Request.Context(), h.DB, userID(c), tab, key, rowID, status, ttl)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}
