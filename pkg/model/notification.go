package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is a reminder for a single user about a single event. (UserID, EventID, SendAt) is
// unique so repeated scheduling never duplicates a reminder.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_notification_triple" json:"userId"`
	User      *User      `json:"-"`
	EventID   uuid.UUID  `gorm:"type:uuid;uniqueIndex:idx_notification_triple" json:"eventId"`
	Event     *Event     `json:"-"`
	SendAt    time.Time  `gorm:"uniqueIndex:idx_notification_triple;index" json:"sendAt"`
	Sent      bool       `gorm:"index" json:"sent"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ChatMessage is a message sent to the chat room of an event.
type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	EventID   uuid.UUID `gorm:"type:uuid;index" json:"eventId"`
	UserID    uuid.UUID `gorm:"type:uuid" json:"userId"`
	User      *User     `json:"-"`
	Content   string    `json:"content"`
}

func (m *ChatMessage) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
