// Patients HTTP handler.
//
//   - GET /patients  (deduplicated roll-up across every feed, paginated)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whitesmile/frontdesk-backend/internal/report"
	"github.com/whitesmile/frontdesk-backend/internal/utils"
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// PatientsResponse wraps a page of the all-patients roll-up.
type PatientsResponse struct {
	Patients   []report.PatientSummary `json:"patients"`
	Pagination Pagination              `json:"pagination"`
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 50
		maxPageSize     = 200
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return
}

// ListPatients godoc
// @ID          listPatients
// @Summary     All patients (deduplicated)
// @Description One entry per patient name across every feed; most recent activity first, highest-priority status wins.
// @Tags        Patients
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(200) default(50)
// @Success     200  {object}  handlers.PatientsResponse
// @Router      /patients [get]
func (h *Handlers) ListPatients(c *gin.Context) {
	s := h.state.Snapshot()
	all := s.Patients
	page, pageSize := clampPagination(c)

	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	items := all[start:end]
	if items == nil {
		items = []report.PatientSummary{}
	}

	ok(c, http.StatusOK, PatientsResponse{
		Patients: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
