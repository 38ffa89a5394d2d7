package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/response"
)

// ProgressHandler exposes partial-progress endpoints.
type ProgressHandler struct {
	service *service.ProgressService
}

// NewProgressHandler creates a new handler.
func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{service: svc}
}

// Create godoc
// @Summary Record progress
// @Description Record a progress entry against an approved planning
// @Tags Progress
// @Accept json
// @Produce json
// @Param payload body models.CreateProgressRequest true "Progress payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /progress [post]
func (h *ProgressHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.CreateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	progress, err := h.service.Create(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, progress)
}

// List godoc
// @Summary List progress
// @Description List progress entries scoped to the caller
// @Tags Progress
// @Produce json
// @Param planning_id query string false "Filter by planning"
// @Param partial query int false "Filter by partial"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress [get]
func (h *ProgressHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	filter := models.ProgressFilter{
		PlanningID:  c.Query("planning_id"),
		ProfessorID: c.Query("professor_id"),
	}
	if partial := c.Query("partial"); partial != "" {
		if parsed, err := strconv.Atoi(partial); err == nil {
			filter.Partial = &parsed
		}
	}

	entries, err := h.service.List(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, entries)
}

// ListByPlanning godoc
// @Summary Progress for a planning
// @Description List all progress entries for one planning
// @Tags Progress
// @Produce json
// @Param id path string true "Planning ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /plannings/{id}/progress [get]
func (h *ProgressHandler) ListByPlanning(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	entries, err := h.service.ListByPlanning(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, entries)
}

// Stats godoc
// @Summary Progress statistics
// @Description Aggregate progress entries scoped to the caller
// @Tags Progress
// @Produce json
// @Param partial query int false "Filter by partial"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/stats [get]
func (h *ProgressHandler) Stats(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	filter := models.ProgressFilter{ProfessorID: c.Query("professor_id")}
	if partial := c.Query("partial"); partial != "" {
		if parsed, err := strconv.Atoi(partial); err == nil {
			filter.Partial = &parsed
		}
	}

	stats, err := h.service.Stats(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, stats)
}

// Get godoc
// @Summary Get progress entry
// @Description Return a progress entry by id
// @Tags Progress
// @Produce json
// @Param id path string true "Progress ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/{id} [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	progress, err := h.service.Get(c.Request.Context(), claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, progress)
}

// Update godoc
// @Summary Update progress entry
// @Description Revise a progress entry; the status band is re-derived
// @Tags Progress
// @Accept json
// @Produce json
// @Param id path string true "Progress ID"
// @Param payload body models.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/{id} [put]
func (h *ProgressHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	progress, err := h.service.Update(c.Request.Context(), claims, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, progress)
}

// Delete godoc
// @Summary Delete progress entry
// @Description Soft-delete a progress entry
// @Tags Progress
// @Produce json
// @Param id path string true "Progress ID"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /progress/{id} [delete]
func (h *ProgressHandler) Delete(c *gin.Context) {
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
