package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/response"
)

// EvidenceHandler exposes training evidence endpoints.
type EvidenceHandler struct {
	service       *service.EvidenceService
	metrics       *service.MetricsService
	maxUploadSize int64
}

// NewEvidenceHandler creates a new handler.
func NewEvidenceHandler(svc *service.EvidenceService, metrics *service.MetricsService, maxUploadSize int64) *EvidenceHandler {
	return &EvidenceHandler{service: svc, metrics: metrics, maxUploadSize: maxUploadSize}
}

// Create godoc
// @Summary Register training evidence
// @Description Register a completed training course with its document
// @Tags Evidence
// @Accept multipart/form-data
// @Produce json
// @Param course_name formData string true "Course name"
// @Param institution formData string true "Institution"
// @Param date formData string true "Course date (YYYY-MM-DD)"
// @Param hours formData int true "Course hours"
// @Param file formData file false "Supporting document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences [post]
func (h *EvidenceHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.CreateEvidenceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evidence payload"))
		return
	}

	upload, file, err := openUpload(c, "file", h.maxUploadSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	evidence, err := h.service.Create(c.Request.Context(), claims, req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		h.metrics.RecordUpload(upload.Size)
	}

	response.Created(c, evidence)
}

// List godoc
// @Summary List training evidence
// @Description List evidence records scoped to the caller
// @Tags Evidence
// @Produce json
// @Param status query string false "Filter by status"
// @Param start_date query string false "Range start (YYYY-MM-DD)"
// @Param end_date query string false "Range end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences [get]
func (h *EvidenceHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	filter := models.EvidenceFilter{
		ProfessorID: c.Query("professor_id"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}
	if status := c.Query("status"); status != "" {
		evidenceStatus := models.EvidenceStatus(status)
		if !evidenceStatus.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown evidence status"))
			return
		}
		filter.Status = &evidenceStatus
	}
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
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	records, pagination, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, pagination)
}

// Get godoc
// @Summary Get training evidence
// @Description Return an evidence record by id
// @Tags Evidence
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences/{id} [get]
func (h *EvidenceHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	evidence, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, evidence)
}

// Update godoc
// @Summary Update training evidence
// @Description Revise a pending evidence record
// @Tags Evidence
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences/{id} [put]
func (h *EvidenceHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.UpdateEvidenceRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid evidence payload"))
		return
	}

	upload, file, err := openUpload(c, "file", h.maxUploadSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	if file != nil {
		defer file.Close()
	}

	evidence, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		h.metrics.RecordUpload(upload.Size)
	}

	response.OK(c, evidence)
}

// Review godoc
// @Summary Review training evidence
// @Description Record an approve or reject verdict with feedback
// @Tags Evidence
// @Accept json
// @Produce json
// @Param id path string true "Evidence ID"
// @Param payload body models.ReviewEvidenceRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences/{id}/review [post]
func (h *EvidenceHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.ReviewEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	evidence, err := h.service.Review(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordReview("evidence", string(req.Status))

	response.OK(c, evidence)
}

// Delete godoc
// @Summary Delete training evidence
// @Description Soft-delete an evidence record
// @Tags Evidence
// @Produce json
// @Param id path string true "Evidence ID"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /evidences/{id} [delete]
func (h *EvidenceHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
