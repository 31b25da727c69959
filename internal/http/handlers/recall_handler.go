// Recall HTTP handlers.
//
//   - GET    /recalls              (open recall queue, oldest first)
//   - POST   /recalls/{id}/status  (move a recall through its lifecycle)
//   - GET    /recalls/alert        (active new-recall alert, if any)
//   - DELETE /recalls/alert        (dismiss the alert early)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
	"github.com/whitesmile/frontdesk-backend/internal/feeds"
	"github.com/whitesmile/frontdesk-backend/internal/http/middleware"
)

// RecallListResponse wraps the open recall queue.
type RecallListResponse struct {
	Recalls []domain.RecallRow `json:"recalls"`
	Count   int                `json:"count"`
	Overdue int                `json:"overdue"`
}

// SetRecallStatusRequest is the JSON payload for a recall status change.
type SetRecallStatusRequest struct {
	// Status must be one of: ready, done, not_needed, recalled.
	Status string `json:"status" binding:"required" example:"done"`
}

// RecallAlertResponse wraps the active alert; Active is false when none.
type RecallAlertResponse struct {
	Active bool                  `json:"active"`
	Alert  *classify.RecallAlert `json:"alert,omitempty"`
}

// ListRecalls godoc
// @ID          listRecalls
// @Summary     Open recall queue
// @Tags        Recalls
// @Produce     json
// @Success     200  {object}  handlers.RecallListResponse
// @Router      /recalls [get]
func (h *Handlers) ListRecalls(c *gin.Context) {
	s := h.state.Snapshot()
	rows := s.RecallsOpen
	if rows == nil {
		rows = []domain.RecallRow{}
	}
	ok(c, http.StatusOK, RecallListResponse{Recalls: rows, Count: len(rows), Overdue: s.RecallOverdue})
}

// SetRecallStatus godoc
// @ID          setRecallStatus
// @Summary     Change a recall's status
// @Tags        Recalls
// @Accept      json
// @Produce     json
// @Param       id               path    string                           true   "Row ID"
// @Param       Idempotency-Key  header  string                           false  "Safe-retry key"
// @Param       body             body    handlers.SetRecallStatusRequest  true   "New status"
// @Success     200  {object}  domain.RecallRow
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown status value"
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /recalls/{id}/status [post]
func (h *Handlers) SetRecallStatus(c *gin.Context) {
	var req SetRecallStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	id := c.Param("id")
	if middleware.IsReplay(c) {
		s := h.state.Snapshot()
		for _, r := range s.RecallsOpen {
			if r.ID == id {
				ok(c, http.StatusOK, r)
				return
			}
		}
		ok(c, http.StatusOK, gin.H{"id": id, "status": req.Status})
		return
	}

	r, err := h.recalls.SetStatus(c.Request.Context(), id, domain.RecallStatus(req.Status))
	if err != nil {
		failService(c, err)
		return
	}
	h.recordIdempotency(c, feeds.TabRecall, r.ID, http.StatusOK)
	ok(c, http.StatusOK, r)
}

// GetRecallAlert godoc
// @ID          getRecallAlert
// @Summary     Active new-recall alert
// @Description Returns the short-lived alert raised when new recalls appeared on the last poll cycle.
// @Tags        Recalls
// @Produce     json
// @Success     200  {object}  handlers.RecallAlertResponse
// @Router      /recalls/alert [get]
func (h *Handlers) GetRecallAlert(c *gin.Context) {
	if al, active := h.state.Alert(); active {
		ok(c, http.StatusOK, RecallAlertResponse{Active: true, Alert: &al})
		return
	}
	ok(c, http.StatusOK, RecallAlertResponse{Active: false})
}

// DismissRecallAlert godoc
// @ID          dismissRecallAlert
// @Summary     Dismiss the new-recall alert
// @Tags        Recalls
// @Success     204  {string}  string  "No Content"
// @Router      /recalls/alert [delete]
func (h *Handlers) DismissRecallAlert(c *gin.Context) {
	h.state.DismissAlert()
	noContent(c)
}
