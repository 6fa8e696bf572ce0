package transport

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anna199/TeachTogether/internal/entity"
	"github.com/anna199/TeachTogether/internal/service"

	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	eventService service.EventService
}

func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

func (h *EventHandler) GetUpcomingEvents(c *gin.Context) {
	events, err := h.eventService.GetUpcomingEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var event entity.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		respondBadBody(c, err)
		return
	}

	created, err := h.eventService.CreateEvent(c.Request.Context(), &event)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var patch entity.EventPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadBody(c, err)
		return
	}

	updated, err := h.eventService.UpdateEvent(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Event deleted successfully"})
}

// searchQuery is the raw query string of GET /search/filter.
type searchQuery struct {
	Subject   string `form:"subject"`
	City      string `form:"city"`
	State     string `form:"state"`
	MinAge    string `form:"minAge"`
	MaxAge    string `form:"maxAge"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

func (h *EventHandler) SearchEvents(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBadBody(c, err)
		return
	}

	filter, err := q.toFilter()
	if err != nil {
		respondError(c, err)
		return
	}

	events, err := h.eventService.SearchEvents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

// toFilter parses the numeric and date parameters. Empty values are treated
// as not supplied.
func (q searchQuery) toFilter() (entity.EventFilter, error) {
	filter := entity.EventFilter{
		Subject: strings.TrimSpace(q.Subject),
		City:    strings.TrimSpace(q.City),
		State:   strings.TrimSpace(q.State),
	}

	var err error
	if filter.MinAge, err = parseAge("minAge", q.MinAge); err != nil {
		return filter, err
	}
	if filter.MaxAge, err = parseAge("maxAge", q.MaxAge); err != nil {
		return filter, err
	}
	if filter.StartDate, err = parseDate("startDate", q.StartDate); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDate("endDate", q.EndDate); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseAge(field, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, entity.NewValidationError(field, "number", field+" must be a number")
	}
	return &v, nil
}

// Values without a zone offset are read as UTC.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(field, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, entity.NewValidationError(field, "date", field+" must be a date (YYYY-MM-DD or RFC 3339)")
}
