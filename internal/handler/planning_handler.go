package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/response"
)

// PlanningHandler exposes the planning workflow endpoints.
type PlanningHandler struct {
	service       *service.PlanningService
	metrics       *service.MetricsService
	maxUploadSize int64
}

// NewPlanningHandler creates a new handler.
func NewPlanningHandler(svc *service.PlanningService, metrics *service.MetricsService, maxUploadSize int64) *PlanningHandler {
	return &PlanningHandler{service: svc, metrics: metrics, maxUploadSize: maxUploadSize}
}

// openUpload validates and opens a multipart file. A missing file is not an
// error; the caller decides whether an attachment is required.
func openUpload(c *gin.Context, field string, maxSize int64) (*service.FileUpload, multipart.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid file upload")
	}
	if maxSize > 0 && header.Size > maxSize {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "file exceeds the maximum allowed size")
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload")
	}
	return &service.FileUpload{Filename: header.Filename, Size: header.Size, Reader: file}, file, nil
}

// Create godoc
// @Summary Submit planning
// @Description Submit a new didactic planning with an optional attachment
// @Tags Plannings
// @Accept multipart/form-data
// @Produce json
// @Param course_name formData string true "Course name"
// @Param partial formData int true "Partial (1-3)"
// @Param cycle formData string true "School cycle"
// @Param file formData file false "Planning document"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings [post]
func (h *PlanningHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.CreatePlanningRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planning payload"))
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

	planning, err := h.service.Create(c.Request.Context(), claims, req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		h.metrics.RecordUpload(upload.Size)
	}

	response.Created(c, planning)
}

// List godoc
// @Summary List plannings
// @Description List plannings scoped to the caller
// @Tags Plannings
// @Produce json
// @Param course_name query string false "Filter by course name"
// @Param partial query int false "Filter by partial"
// @Param status query string false "Filter by status"
// @Param cycle query string false "Filter by cycle"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings [get]
func (h *PlanningHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	filter := models.PlanningFilter{
		ProfessorID: c.Query("professor_id"),
		CourseName:  c.Query("course_name"),
		Cycle:       c.Query("cycle"),
		SortBy:      c.Query("sort_by"),
		SortOrder:   c.Query("sort_order"),
	}
	if partial := c.Query("partial"); partial != "" {
		if parsed, err := strconv.Atoi(partial); err == nil {
			filter.Partial = &parsed
		}
	}
	if status := c.Query("status"); status != "" {
		planningStatus := models.PlanningStatus(status)
		if !planningStatus.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown planning status"))
			return
		}
		filter.Status = &planningStatus
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	plannings, pagination, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, plannings, pagination)
}

// Get godoc
// @Summary Get planning
// @Description Return a planning by id
// @Tags Plannings
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id} [get]
func (h *PlanningHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	planning, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, planning)
}

// History godoc
// @Summary Planning history
// @Description Return prior-cycle plannings for the same course
// @Tags Plannings
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id}/history [get]
func (h *PlanningHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	history, err := h.service.History(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, history)
}

// Update godoc
// @Summary Update planning
// @Description Revise an editable planning; revising after adjustments resubmits it
// @Tags Plannings
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id} [put]
func (h *PlanningHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.UpdatePlanningRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid planning payload"))
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

	planning, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if upload != nil {
		h.metrics.RecordUpload(upload.Size)
	}

	response.OK(c, planning)
}

// Review godoc
// @Summary Review planning
// @Description Record an approve or adjustments verdict with feedback
// @Tags Plannings
// @Accept json
// @Produce json
// @Param id path string true "Planning ID"
// @Param payload body models.ReviewPlanningRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id}/review [post]
func (h *PlanningHandler) Review(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.ReviewPlanningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	planning, err := h.service.Review(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordReview("planning", string(req.Status))

	response.OK(c, planning)
}

// Delete godoc
// @Summary Delete planning
// @Description Soft-delete a planning
// @Tags Plannings
// @Produce json
// @Param id path string true "Planning ID"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id} [delete]
func (h *PlanningHandler) Delete(c *gin.Context) {
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
