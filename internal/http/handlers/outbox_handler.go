// Outbox HTTP handlers.
//
// This file exposes REST endpoints for outbox messages:
//   - GET  /outbox/send-now         (ready-to-send queue, soonest first)
//   - GET  /outbox/needs-review     (rows with data defects, worst first)
//   - GET  /outbox/opened           (conversations opened but not confirmed)
//   - GET  /outbox/completed-today  (sent on the current clinic date)
//   - POST /outbox/{id}/open        (mark conversation opened)
//   - POST /outbox/{id}/sent       (confirm the message went out)
//   - POST /outbox/{id}/not-sent   (undo an accidental open)
//   - PUT  /outbox/{id}/details    (correct row fields; blocking write)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/http/middleware"
	"github.com/whitesmile/frontdesk-backend/internal/services"
)

// OutboxListResponse wraps a bucket of outbox rows.
type OutboxListResponse struct {
	Messages []domain.OutboxMessage `json:"messages"`
	Count    int                    `json:"count"`
}

// ReviewListResponse wraps the needs-review bucket, each row annotated with
// its review reason.
type ReviewListResponse struct {
	Messages []classify.ReviewItem `json:"messages"`
	Count    int                   `json:"count"`
}

// ListSendNow godoc
// @ID          listSendNow
// @Summary     Ready-to-send queue
// @Description Returns valid, ready outbox rows ordered by appointment start (creation time when unknown).
// @Tags        Outbox
// @Produce     json
// @Success     200  {object}  handlers.OutboxListResponse
// @Router      /outbox/send-now [get]
func (h *Handlers) ListSendNow(c *gin.Context) {
	s := h.state.Snapshot()
	ok(c, http.StatusOK, OutboxListResponse{Messages: orEmpty(s.Buckets.SendNow), Count: len(s.Buckets.SendNow)})
}

// ListNeedsReview godoc
// @ID          listNeedsReview
// @Summary     Review queue
// @Description Returns rows with data defects, highest-priority reason first.
// @Tags        Outbox
// @Produce     json
// @Success     200  {object}  handlers.ReviewListResponse
// @Router      /outbox/needs-review [get]
func (h *Handlers) ListNeedsReview(c *gin.Context) {
	s := h.state.Snapshot()
	items := s.Buckets.NeedsReview
	if items == nil {
		items = []classify.ReviewItem{}
	}
	ok(c, http.StatusOK, ReviewListResponse{Messages: items, Count: len(items)})
}

// ListOpened godoc
// @ID          listOpened
// @Summary     Opened conversations
// @Description Returns rows whose WhatsApp conversation is open but unconfirmed, most recent first.
// @Tags        Outbox
// @Produce     json
// @Success     200  {object}  handlers.OutboxListResponse
// @Router      /outbox/opened [get]
func (h *Handlers) ListOpened(c *gin.Context) {
	s := h.state.Snapshot()
	ok(c, http.StatusOK, OutboxListResponse{Messages: orEmpty(s.Buckets.Opened), Count: len(s.Buckets.Opened)})
}

// ListCompletedToday godoc
// @ID          listCompletedToday
// @Summary     Completed today
// @Description Returns rows sent on the current clinic date, most recent first.
// @Tags        Outbox
// @Produce     json
// @Success     200  {object}  handlers.OutboxListResponse
// @Router      /outbox/completed-today [get]
func (h *Handlers) ListCompletedToday(c *gin.Context) {
	s := h.state.Snapshot()
	ok(c, http.StatusOK, OutboxListResponse{Messages: orEmpty(s.Buckets.CompletedToday), Count: len(s.Buckets.CompletedToday)})
}

// action funnels the three status mutations through shared replay and
// idempotency handling.
func (h *Handlers) action(c *gin.Context, do func(id string) (domain.OutboxMessage, error)) {
	id := c.Param("id")
	if middleware.IsReplay(c) {
		// The mutation already happened; serve the current row state.
		s := h.state.Snapshot()
		for _, lists := range [][]domain.OutboxMessage{s.Buckets.SendNow, s.Buckets.Opened, s.Buckets.CompletedToday} {
			for _, m := range lists {
				if m.ID == id {
					ok(c, http.StatusOK, m)
					return
				}
			}
		}
		for _, m := range s.Buckets.NeedsReview {
			if m.ID == id {
				ok(c, http.StatusOK, m.OutboxMessage)
				return
			}
		}
		fail(c, http.StatusNotFound, ErrCodeNotFound, "row not found")
		return
	}

	m, err := do(id)
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, feeds.TabOutbox, m.ID, http.StatusOK)
	ok(c, http.StatusOK, m)
}

// MarkOpened godoc
// @ID          markOpened
// @Summary     Mark conversation opened
// @Tags        Outbox
// @Produce     json
// @Param       id               path    string  true   "Row ID"
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"
// @Success     200  {object}  domain.OutboxMessage
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Illegal transition"
// @Router      /outbox/{id}/open [post]
func (h *Handlers) MarkOpened(c *gin.Context) {
	h.action(c, func(id string) (domain.OutboxMessage, error) {
		return h.outbox.MarkOpened(c.Request.Context(), id)
	})
}

// MarkSent godoc
// @ID          markSent
// @Summary     Confirm message sent
// @Tags        Outbox
// @Produce     json
// @Param       id               path    string  true   "Row ID"
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"
// @Success     200  {object}  domain.OutboxMessage
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Illegal transition"
// @Router      /outbox/{id}/sent [post]
func (h *Handlers) MarkSent(c *gin.Context) {
	h.action(c, func(id string) (domain.OutboxMessage, error) {
		return h.outbox.MarkSent(c.Request.Context(), id)
	})
}

// MarkNotSent godoc
// @ID          markNotSent
// @Summary     Undo an accidental open
// @Tags        Outbox
// @Produce     json
// @Param       id               path    string  true   "Row ID"
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"
// @Success     200  {object}  domain.OutboxMessage
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Illegal transition"
// @Router      /outbox/{id}/not-sent [post]
func (h *Handlers) MarkNotSent(c *gin.Context) {
	h.action(c, func(id string) (domain.OutboxMessage, error) {
		return h.outbox.MarkNotSent(c.Request.Context(), id)
	})
}

// UpdateDetails godoc
// @ID          updateOutboxDetails
// @Summary     Correct row details
// @Description Fixes the data defects of a review-queue row. The sheet write is synchronous; on success the row returns to the ready state.
// @Tags        Outbox
// @Accept      json
// @Produce     json
// @Param       id    path  string                  true  "Row ID"
// @Param       body  body  services.DetailsUpdate  true  "Fields to change (omitted fields untouched)"
// @Success     200  {object}  domain.OutboxMessage
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid field value"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     502  {object}  handlers.ErrorResponse  "Backend rejected the write"
// @Router      /outbox/{id}/details [put]
func (h *Handlers) UpdateDetails(c *gin.Context) {
	var req services.DetailsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	m, err := h.outbox.UpdateDetails(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, m)
}

func orEmpty(ms []domain.OutboxMessage) []domain.OutboxMessage {
	if ms == nil {
		return []domain.OutboxMessage{}
	}
	return ms
}
