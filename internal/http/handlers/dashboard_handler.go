// Dashboard HTTP handlers.
//
// This file exposes the aggregate dashboard view:
//   - GET /dashboard   (counts, percentages, weekly window, poll health)
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/whitesmile/frontdesk-backend/internal/classify"
	"github.com/whitesmile/frontdesk-backend/internal/domain"
)

// DashboardCounts carries the per-bucket row counts shown on the cards.
type DashboardCounts struct {
	SendNow         int `json:"send_now"`
	NeedsReview     int `json:"needs_review"`
	Opened          int `json:"opened"`
	CompletedToday  int `json:"completed_today"`
	CancelledOpen   int `json:"cancelled_open"`
	RescheduleOpen  int `json:"reschedule_open"`
	FollowupOverdue int `json:"followup_overdue"`
	RecallsOpen     int `json:"recalls_open"`
	RecallOverdue   int `json:"recall_overdue"`
}

// DashboardResponse is the aggregate view returned by GET /dashboard.
type DashboardResponse struct {
	Counts         DashboardCounts       `json:"counts"`
	SendCompletion int                   `json:"send_completion_percent"`
	WeeklyClosure  int                   `json:"weekly_closure_percent"`
	Weekly         []domain.WeeklyEvent  `json:"weekly_events"`
	RecallAlert    *classify.RecallAlert `json:"recall_alert,omitempty"`
	LastPoll       time.Time             `json:"last_poll"`
	LastError      string                `json:"last_error,omitempty"`
	Cycles         int64                 `json:"poll_cycles"`
}

// GetDashboard godoc
// @ID          getDashboard
// @Summary     Aggregate dashboard view
// @Description Returns per-bucket counts, completion percentages, the weekly activity window, and poll health.
// @Tags        Dashboard
// @Produce     json
// @Success     200  {object}  handlers.DashboardResponse
// @Router      /dashboard [get]
func (h *Handlers) GetDashboard(c *gin.Context) {
	s := h.state.Snapshot()
	resp := DashboardResponse{
		Counts: DashboardCounts{
			SendNow:         len(s.Buckets.SendNow),
			NeedsReview:     len(s.Buckets.NeedsReview),
			Opened:          len(s.Buckets.Opened),
			CompletedToday:  len(s.Buckets.CompletedToday),
			CancelledOpen:   len(s.CancelledOpen),
			RescheduleOpen:  len(s.RescheduleOpen),
			FollowupOverdue: s.FollowupOverdue,
			RecallsOpen:     len(s.RecallsOpen),
			RecallOverdue:   s.RecallOverdue,
		},
		SendCompletion: s.SendCompletion,
		WeeklyClosure:  s.WeeklyClosure,
		Weekly:         s.Weekly,
		LastPoll:       s.LastPoll,
		LastError:      s.LastError,
		Cycles:         s.Cycles,
	}
	if al, active := h.state.Alert(); active {
		resp.RecallAlert = &al
	}
	ok(c, http.StatusOK, resp)
}
