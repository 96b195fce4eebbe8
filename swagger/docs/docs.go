package docs

import (
	"github.com/dhis2-sre/im-calendar/pkg/event"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
)

// swagger:parameters repeatEvent
type IdParam struct {
	// in: path
	// required: true
	ID uuid.UUID `json:"id"`
}

// swagger:parameters repeatEvent
type _ struct {
	// Recurrence rule
	// in: body
	// required: true
	Body event.RepeatRequest
}

// swagger:response RepeatResponse
type _ struct {
	// in: body
	Body event.RepeatResponse
}

// swagger:response User
type _ struct {
	// in: body
	Body model.User
}

// swagger:parameters connect
type _ struct {
	// Access token for clients which can't set the Authorization header
	// in: query
	// required: false
	Token string `json:"token"`
}

// swagger:response Health
type _ struct {
	// in: body
	Body struct {
		Status string `json:"status"`
	}
}

// swagger:response
type Error struct {
	// The error message
	//in: body
	Message string
}
