package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/votacontrol/attendance-api/internal/errors"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/services"
	"github.com/votacontrol/attendance-api/internal/utils"
)

// ReportHandler serves the dashboard and report aggregations
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// GetFilterDashboard returns the aggregate counts for a filter
func (h *ReportHandler) GetFilterDashboard(c *gin.Context) {
	filter := repository.VoterFilter{
		Leader:  repository.ParseLeaderSelector(c.Query("leader")),
		Colegio: strings.TrimSpace(c.Query("colegio")),
		Mesa:    strings.TrimSpace(c.Query("mesa")),
	}

	dashboard, err := h.reportService.BuildFilterDashboard(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to build dashboard")
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetGeneralReport returns the system-wide report
func (h *ReportHandler) GetGeneralReport(c *gin.Context) {
	report, err := h.reportService.BuildGeneralReport(time.Now(), utils.FormatExport)
	if err != nil {
		apierrors.InternalError(c, "Failed to build report")
		return
	}

	c.JSON(http.StatusOK, report)
}
