// Follow-up HTTP handlers.
//
//   - GET  /followups/cancelled          (open cancellation follow-ups)
//   - GET  /followups/reschedule         (open reschedule follow-ups)
//   - POST /followups/{kind}/{id}/close  (mark a follow-up handled)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/http/middleware"
)

// FollowupListResponse wraps one follow-up queue.
type FollowupListResponse struct {
	Followups []domain.FollowupRow `json:"followups"`
	Count     int                  `json:"count"`
	Overdue   int                  `json:"overdue"`
}

// CloseFollowupRequest is the JSON payload for closing a follow-up.
type CloseFollowupRequest struct {
	// HandledBy optionally records which operator made the call.
	HandledBy string `json:"handled_by" example:"Rana"`
	// Note optionally records the outcome.
	Note string `json:"note" example:"rebooked for Tuesday"`
}

func parseKind(raw string) (domain.FollowupKind, bool) {
	switch raw {
	case "cancelled":
		return domain.FollowupCancelled, true
	case "reschedule":
		return domain.FollowupReschedule, true
	}
	return "", false
}

// ListCancelled godoc
// @ID          listCancelledFollowups
// @Summary     Open cancellation follow-ups
// @Tags        Followups
// @Produce     json
// @Success     200  {object}  handlers.FollowupListResponse
// @Router      /followups/cancelled [get]
func (h *Handlers) ListCancelled(c *gin.Context) {
	s := h.state.Snapshot()
	rows := s.CancelledOpen
	if rows == nil {
		rows = []domain.FollowupRow{}
	}
	ok(c, http.StatusOK, FollowupListResponse{Followups: rows, Count: len(rows), Overdue: s.FollowupOverdue})
}

// ListReschedule godoc
// @ID          listRescheduleFollowups
// @Summary     Open reschedule follow-ups
// @Tags        Followups
// @Produce     json
// @Success     200  {object}  handlers.FollowupListResponse
// @Router      /followups/reschedule [get]
func (h *Handlers) ListReschedule(c *gin.Context) {
	s := h.state.Snapshot()
	rows := s.RescheduleOpen
	if rows == nil {
		rows = []domain.FollowupRow{}
	}
	ok(c, http.StatusOK, FollowupListResponse{Followups: rows, Count: len(rows), Overdue: s.FollowupOverdue})
}

// CloseFollowup godoc
// @ID          closeFollowup
// @Summary     Close a follow-up
// @Description Marks a follow-up handled after the reception call. Optimistic: the row leaves the queue immediately.
// @Tags        Followups
// @Accept      json
// @Produce     json
// @Param       kind             path    string                         true   "Queue"  Enums(cancelled, reschedule)
// @Param       id               path    string                         true   "Row ID"
// @Param       Idempotency-Key  header  string                         false  "Safe-retry key"
// @Param       body             body    handlers.CloseFollowupRequest  false  "Audit fields"
// @Success     200  {object}  domain.FollowupRow
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown queue"
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     409  {object}  handlers.ErrorResponse  "Already closed"
// @Router      /followups/{kind}/{id}/close [post]
func (h *Handlers) CloseFollowup(c *gin.Context) {
	kind, known := parseKind(c.Param("kind"))
	if !known {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown follow-up queue")
		return
	}
	var req CloseFollowupRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	id := c.Param("id")
	if middleware.IsReplay(c) {
		s := h.state.Snapshot()
		rows := s.CancelledOpen
		if kind == domain.FollowupReschedule {
			rows = s.RescheduleOpen
		}
		for _, r := range rows {
			if r.ID == id {
				ok(c, http.StatusOK, r)
				return
			}
		}
		// Closed rows leave the snapshot queues; a bare 200 acknowledges
		// the replay.
		ok(c, http.StatusOK, gin.H{"id": id, "followup_status": domain.FollowupClosed})
		return
	}

	r, err := h.fu.Close(c.Request.Context(), kind, id, req.HandledBy, req.Note)
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, followupTabName(kind), r.ID, http.StatusOK)
	ok(c, http.StatusOK, r)
}

func followupTabName(kind domain.FollowupKind) string {
	if kind == domain.FollowupReschedule {
		return feeds.TabReschedule
	}
	return feeds.TabCancelled
}
