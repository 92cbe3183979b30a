package admin

import (
	"strconv"

	"github.com/compoundrx/storefront/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetAdminOverview returns the dashboard headline numbers. Without a range
// it covers the trailing 30 days.
func (h *Handler) GetAdminOverview(c *gin.Context) {
	startAt, _ := parseTimeQuery(c.Query("start_at"))
	endAt, _ := parseTimeQuery(c.Query("end_at"))

	overview, err := h.ReportService.GetOverview(startAt, endAt)
	if err != nil {
		respondError(c, response.CodeInternal, "report fetch failed", err)
		return
	}
	response.Success(c, overview)
}

// GetAdminTopProducts returns the best sellers by paid quantity.
func (h *Handler) GetAdminTopProducts(c *gin.Context) {
	startAt, _ := parseTimeQuery(c.Query("start_at"))
	endAt, _ := parseTimeQuery(c.Query("end_at"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rankings, err := h.ReportService.GetTopProducts(startAt, endAt, limit)
	if err != nil {
		respondError(c, response.CodeInternal, "report fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": rankings})
}
