package event

import (
	"context"
	"net/http"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/dhis2-sre/im-calendar/pkg/recurrence"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(eventService eventService) Handler {
	return Handler{
		eventService: eventService,
	}
}

type Handler struct {
	eventService eventService
}

type eventService interface {
	Repeat(ctx context.Context, actor model.User, id uuid.UUID, rule recurrence.Rule) (*model.Event, []model.Event, error)
}

type RepeatRequest struct {
	RepeatType      model.RepeatType `json:"repeatType" binding:"required,repeatUnit"`
	RepeatStep      uint             `json:"repeatStep"`
	RepeatUntil     *time.Time       `json:"repeatUntil"`
	MaxRepeatsCount uint             `json:"maxRepeatsCount"`
}

type RepeatResponse struct {
	Event       model.Event   `json:"event"`
	Occurrences []model.Event `json:"occurrences"`
}

// Repeat event
func (h Handler) Repeat(c *gin.Context) {
	// swagger:route POST /events/{id}/recurrence repeatEvent
	//
	// Repeat event
	//
	// Set the recurrence rule of an event and create its occurrences. Occurrences are created
	// until the first of repeat until, max repeats count or ten years from now is reached.
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   201: RepeatResponse
	//   400: Error
	//   401: Error
	//   403: Error
	//   404: Error
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	var request RepeatRequest
	if err := handler.DataBinder(c, &request); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	rule := recurrence.Rule{
		Type:     request.RepeatType,
		Step:     request.RepeatStep,
		Until:    request.RepeatUntil,
		MaxCount: request.MaxRepeatsCount,
	}
	event, occurrences, err := h.eventService.Repeat(c.Request.Context(), *user, id, rule)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if occurrences == nil {
		occurrences = []model.Event{}
	}
	c.JSON(http.StatusCreated, RepeatResponse{Event: *event, Occurrences: occurrences})
}
