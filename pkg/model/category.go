package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups events. The owner has every right on the category and is never stored as a
// participant.
type Category struct {
	ID           uuid.UUID             `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Title        string                `json:"title"`
	OwnerID      uuid.UUID             `gorm:"type:uuid;index" json:"ownerId"`
	Owner        *User                 `json:"owner,omitempty"`
	Participants []CategoryParticipant `gorm:"constraint:OnDelete:CASCADE" json:"participants,omitempty"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Participant returns the participant row of the given user, if any.
func (c Category) Participant(userID uuid.UUID) (CategoryParticipant, bool) {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return CategoryParticipant{}, false
}

type CategoryParticipant struct {
	ID         uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_category_participant" json:"categoryId"`
	UserID     uuid.UUID          `gorm:"type:uuid;uniqueIndex:idx_category_participant" json:"userId"`
	IsCreator  bool               `json:"isCreator"`
	Permission CategoryPermission `gorm:"type:varchar(16)" json:"permission"`
}

func (p *CategoryParticipant) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
