package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sipstation/bubble-tea-pos-api/services"
	"github.com/sipstation/bubble-tea-pos-api/utils"
)

// ReportController serves the manager reports
type ReportController struct {
	reports *services.ReportService
	logger  *zap.Logger
}

// NewReportController creates a report controller
func NewReportController(reports *services.ReportService, logger *zap.Logger) *ReportController {
	return &ReportController{reports: reports, logger: logger}
}

// dateRange reads start/end, or the older startDate/endDate names. A nil
// range means the report's own default applies.
func (ctl *ReportController) dateRange(c *gin.Context) (*utils.DateRange, bool) {
	start := c.Query("start")
	if start == "" {
		start = c.Query("startDate")
	}
	end := c.Query("end")
	if end == "" {
		end = c.Query("endDate")
	}

	r, err := utils.ParseDateRange(start, end, ctl.reports.Location())
	if err != nil {
		respondError(c, http.StatusBadRequest, string(services.KindValidation), err.Error())
		return nil, false
	}
	return r, true
}

// SalesSummary handles GET /api/v1/reports/sales - all time by default
func (ctl *ReportController) SalesSummary(c *gin.Context) {
	r, ok := ctl.dateRange(c)
	if !ok {
		return
	}

	summary, err := ctl.reports.SalesSummary(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}

// PopularItems handles GET /api/v1/reports/popular - today by default
func (ctl *ReportController) PopularItems(c *gin.Context) {
	r, ok := ctl.dateRange(c)
	if !ok {
		return
	}

	items, err := ctl.reports.PopularItems(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, items)
}

// OrdersByStatus handles GET /api/v1/reports/status - today by default
func (ctl *ReportController) OrdersByStatus(c *gin.Context) {
	r, ok := ctl.dateRange(c)
	if !ok {
		return
	}

	counts, err := ctl.reports.OrdersByStatus(c.Request.Context(), r)
	if err != nil {
		respondServiceError(c, ctl.logger, err)
		return
	}
	respondData(c, http.StatusOK, counts)
}
