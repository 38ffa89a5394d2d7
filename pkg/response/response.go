package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
)

// Envelope is the common response contract for every endpoint.
type Envelope struct {
	Data       interface{}        `json:"data,omitempty"`
	Error      *appErrors.Error   `json:"error,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Data: data, Pagination: pagination})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, data interface{}) {
	JSON(c, http.StatusOK, data, nil)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}
