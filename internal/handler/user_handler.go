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

// UserHandler exposes user management endpoints.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Description List users with filtering and pagination
// @Tags Users
// @Produce json
// @Param role query string false "Filter by role"
// @Param is_active query bool false "Filter by active flag"
// @Param search query string false "Search by name or email"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		filter.Role = &userRole
	}
	if active := c.Query("is_active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &parsed
		}
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	users, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, pagination)
}

// Get godoc
// @Summary Get user
// @Description Return a user by id
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user)
}

// Create godoc
// @Summary Create user
// @Description Provision a new user account
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body models.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	user, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Description Update name, role, or active flag
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body models.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid user payload"))
		return
	}

	user, err := h.service.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, user)
}

// Delete godoc
// @Summary Deactivate user
// @Description Soft-delete a user and revoke their sessions
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	if err := h.service.Delete(c.Request.Context(), claims.UserID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
