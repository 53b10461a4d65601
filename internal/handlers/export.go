package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/votacontrol/attendance-api/internal/errors"
	"github.com/votacontrol/attendance-api/internal/models"
	"github.com/votacontrol/attendance-api/internal/repository"
	"github.com/votacontrol/attendance-api/internal/services"
	"github.com/votacontrol/attendance-api/internal/utils"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler serves CSV/XLSX downloads
type ExportHandler struct {
	voterService  *services.VoterService
	reportService *services.ReportService
	exportService *services.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(voterService *services.VoterService, reportService *services.ReportService, exportService *services.ExportService) *ExportHandler {
	return &ExportHandler{
		voterService:  voterService,
		reportService: reportService,
		exportService: exportService,
	}
}

// exportFormat resolves the requested format; anything but "xlsx" is csv.
func exportFormat(c *gin.Context) string {
	if c.DefaultQuery("format", "csv") == "xlsx" {
		return "xlsx"
	}
	return "csv"
}

func (h *ExportHandler) sendVoters(c *gin.Context, voters []models.Voter, base, sheetName string) {
	if exportFormat(c) == "xlsx" {
		data, err := h.exportService.VotersXLSX(voters, sheetName)
		if err != nil {
			apierrors.InternalError(c, "Failed to build workbook")
			return
		}
		sendDownload(c, data, contentTypeXLSX, utils.DownloadName(base, "xlsx"))
		return
	}

	data, err := h.exportService.VotersCSV(voters)
	if err != nil {
		apierrors.InternalError(c, "Failed to build CSV")
		return
	}
	sendDownload(c, data, contentTypeCSV, utils.DownloadName(base, "csv"))
}

func sendDownload(c *gin.Context, data []byte, contentType, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}

// ExportAll downloads every voter
func (h *ExportHandler) ExportAll(c *gin.Context) {
	voters, err := h.voterService.ListForExport(repository.VoterFilter{})
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}
	h.sendVoters(c, voters, "votantes_todos", "Votantes")
}

// ExportConfirmed downloads checked-in voters
func (h *ExportHandler) ExportConfirmed(c *gin.Context) {
	checkedIn := true
	voters, err := h.voterService.ListForExport(repository.VoterFilter{CheckedIn: &checkedIn})
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}
	h.sendVoters(c, voters, "votantes_confirmados", "Confirmados")
}

// ExportPending downloads voters that have not checked in
func (h *ExportHandler) ExportPending(c *gin.Context) {
	checkedIn := false
	voters, err := h.voterService.ListForExport(repository.VoterFilter{CheckedIn: &checkedIn})
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}
	h.sendVoters(c, voters, "votantes_pendientes", "Pendientes")
}

// ExportFiltered downloads voters matching the leader/colegio/mesa filter
func (h *ExportHandler) ExportFiltered(c *gin.Context) {
	filter := repository.VoterFilter{
		Leader:  repository.ParseLeaderSelector(c.Query("leader")),
		Colegio: strings.TrimSpace(c.Query("colegio")),
		Mesa:    strings.TrimSpace(c.Query("mesa")),
	}
	voters, err := h.voterService.ListForExport(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}
	h.sendVoters(c, voters, "votantes_filtrados", "Filtrados")
}

// ExportByLeader downloads one leader's voters
func (h *ExportHandler) ExportByLeader(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		apierrors.BadRequest(c, "Invalid leader id")
		return
	}

	filter := repository.VoterFilter{
		Leader: repository.LeaderSelector{Kind: repository.LeaderByID, ID: id},
	}
	voters, err := h.voterService.ListForExport(filter)
	if err != nil {
		apierrors.InternalError(c, "Failed to list voters")
		return
	}
	h.sendVoters(c, voters, fmt.Sprintf("votantes_lider_%d", id), "Votantes")
}

// ExportReport downloads the general report
func (h *ExportHandler) ExportReport(c *gin.Context) {
	report, err := h.reportService.BuildGeneralReport(time.Now(), utils.FormatExport)
	if err != nil {
		apierrors.InternalError(c, "Failed to build report")
		return
	}

	if exportFormat(c) == "xlsx" {
		data, err := h.exportService.ReportXLSX(report)
		if err != nil {
			apierrors.InternalError(c, "Failed to build workbook")
			return
		}
		sendDownload(c, data, contentTypeXLSX, utils.DownloadName("reporte", "xlsx"))
		return
	}

	data, err := h.exportService.ReportCSV(report)
	if err != nil {
		apierrors.InternalError(c, "Failed to build CSV")
		return
	}
	sendDownload(c, data, contentTypeCSV, utils.DownloadName("reporte", "csv"))
}
