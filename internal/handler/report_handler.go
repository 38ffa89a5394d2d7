package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	"github.com/nmby204/SGE/pkg/response"
)

// ReportHandler exposes aggregate reports and their exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Compliance godoc
// @Summary Planning compliance report
// @Description Summarise planning review outcomes for a cycle/partial
// @Tags Reports
// @Produce json
// @Param cycle query string false "School cycle"
// @Param partial query int false "Partial"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/compliance [get]
func (h *ReportHandler) Compliance(c *gin.Context) {
	filter := models.ComplianceFilter{Cycle: c.Query("cycle")}
	if partial := c.Query("partial"); partial != "" {
		if parsed, err := strconv.Atoi(partial); err == nil {
			filter.Partial = &parsed
		}
	}

	report, err := h.service.Compliance(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// Progress godoc
// @Summary Partial progress report
// @Description Aggregate progress entries across professors
// @Tags Reports
// @Produce json
// @Param partial query int false "Partial"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/progress [get]
func (h *ReportHandler) Progress(c *gin.Context) {
	var partial *int
	if value := c.Query("partial"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			partial = &parsed
		}
	}

	report, err := h.service.Progress(c.Request.Context(), partial)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// Training godoc
// @Summary Training evidence report
// @Description Summarise approved training evidence in a date range
// @Tags Reports
// @Produce json
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/training [get]
func (h *ReportHandler) Training(c *gin.Context) {
	filter := models.TrainingFilter{}
	if start := c.Query("start_date"); start != "" {
		if parsed, err := time.Parse("2006-01-02", start); err == nil {
			filter.StartDate = &parsed
		}
	}
	if end := c.Query("end_date"); end != "" {
		if parsed, err := time.Parse("2006-01-02", end); err == nil {
			filter.EndDate = &parsed
		}
	}

	report, err := h.service.Training(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, report)
}

// Export godoc
// @Summary Export report
// @Description Render a report as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param type path string true "Report type (planning, progress, training)"
// @Param format query string true "Export format (csv, pdf)"
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /reports/{type}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	reportType := models.ReportType(c.Param("type"))
	format := models.ReportFormat(c.DefaultQuery("format", "csv"))

	compliance := models.ComplianceFilter{Cycle: c.Query("cycle")}
	var partial *int
	if value := c.Query("partial"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			partial = &parsed
			compliance.Partial = &parsed
		}
	}
	training := models.TrainingFilter{}
	if start := c.Query("start_date"); start != "" {
		if parsed, err := time.Parse("2006-01-02", start); err == nil {
			training.StartDate = &parsed
		}
	}
	if end := c.Query("end_date"); end != "" {
		if parsed, err := time.Parse("2006-01-02", end); err == nil {
			training.EndDate = &parsed
		}
	}

	result, err := h.service.Export(c.Request.Context(), reportType, format, compliance, partial, training)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
