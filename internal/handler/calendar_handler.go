package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/models"
	"github.com/nmby204/SGE/internal/service"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/response"
)

// CalendarHandler exposes the synthesized calendar.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler creates a new handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// Events godoc
// @Summary Calendar events
// @Description Synthesize calendar events from plannings, evidence, and progress
// @Tags Calendar
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Param kind query string false "Event kind filter"
// @Param max_results query int false "Result cap"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/events [get]
func (h *CalendarHandler) Events(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	filter := models.CalendarFilter{
		ProfessorID: c.Query("professor_id"),
		Kind:        models.CalendarEventKind(c.Query("kind")),
	}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = parsed
		}
	}
	if max := c.Query("max_results"); max != "" {
		if parsed, err := strconv.Atoi(max); err == nil {
			filter.MaxResults = parsed
		}
	}

	events, err := h.service.Events(c.Request.Context(), claims, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, events)
}

// Notify godoc
// @Summary Queue deadline notifications
// @Description Enqueue notifications for events starting within the notice period
// @Tags Calendar
// @Produce json
// @Param notice_hours query int false "Notice period in hours"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /calendar/notify [post]
func (h *CalendarHandler) Notify(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthenticated)
		return
	}

	notice := 48 * time.Hour
	if hours := c.Query("notice_hours"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
			notice = time.Duration(parsed) * time.Hour
		}
	}

	count, err := h.service.NotifyUpcoming(c.Request.Context(), claims, notice)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"enqueued": count})
}
