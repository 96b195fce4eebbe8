package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventKind string

const (
	Meeting  EventKind = "meeting"
	Task     EventKind = "task"
	Reminder EventKind = "reminder"
	Holiday  EventKind = "holiday"
)

type EventPriority string

const (
	PriorityLow    EventPriority = "low"
	PriorityMedium EventPriority = "medium"
	PriorityHigh   EventPriority = "high"
)

// RepeatType is either a recurrence unit or a marker of the role an event plays in an expanded
// series.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatHourly  RepeatType = "hourly"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
	// RecurringParent marks an event whose series has been generated.
	RecurringParent RepeatType = "recurring_parent"
	// RecurringDuplicate marks a generated occurrence. It never carries a rule of its own.
	RecurringDuplicate RepeatType = "recurring_duplicate"
)

// IsUnit returns true if t describes a recurrence unit which can be expanded.
func (t RepeatType) IsUnit() bool {
	switch t {
	case RepeatHourly, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	default:
		return false
	}
}

// Event domain object defining a calendar event
type Event struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Kind            EventKind          `gorm:"type:varchar(16)" json:"kind"`
	Priority        EventPriority      `gorm:"type:varchar(16)" json:"priority"`
	IsPrivate       bool               `json:"isPrivate"`
	IsFinished      bool               `json:"isFinished"`
	Start           time.Time          `gorm:"index" json:"start"`
	End             time.Time          `json:"end"`
	CreatorID       uuid.UUID          `gorm:"type:uuid;index" json:"creatorId"`
	Creator         *User              `json:"creator,omitempty"`
	RepeatType      RepeatType         `gorm:"type:varchar(32)" json:"repeatType"`
	RepeatStep      uint               `json:"repeatStep"`
	RepeatUntil     *time.Time         `json:"repeatUntil,omitempty"`
	MaxRepeatsCount uint               `json:"maxRepeatsCount"`
	ParentID        *uuid.UUID         `gorm:"type:uuid;index" json:"parentId,omitempty"`
	Categories      []Category         `gorm:"many2many:event_category_links" json:"categories,omitempty"`
	Participants    []EventParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// CategoryID returns the id of the category the event belongs to. An event is linked to exactly
// one category, uuid.Nil is returned if the link hasn't been loaded.
func (e Event) CategoryID() uuid.UUID {
	if len(e.Categories) == 0 {
		return uuid.Nil
	}
	return e.Categories[0].ID
}

// Participant returns the participant row of the given user, if any.
func (e Event) Participant(userID uuid.UUID) (EventParticipant, bool) {
	for _, p := range e.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return EventParticipant{}, false
}

// EventCategoryLink is the join table between events and categories.
type EventCategoryLink struct {
	EventID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

type EventParticipant struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	EventID    uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_event_participant" json:"eventId"`
	UserID     uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_event_participant" json:"userId"`
	User       *User           `json:"user,omitempty"`
	IsCreator  bool            `json:"isCreator"`
	IsListener bool            `json:"isListener"`
	Permission EventPermission `gorm:"type:varchar(16)" json:"permission"`
}

func (p *EventParticipant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
