package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User domain object defining a user
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Email       string    `gorm:"index;unique" json:"email"`
	FullName    string    `json:"fullName"`
	Position    string    `json:"position,omitempty"`
	Department  string    `json:"department,omitempty"`
	IsActive    bool      `json:"isActive"`
	IsSuperuser bool      `json:"isSuperuser"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DisplayName is the name shown to other users in chat and reminders.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

type ctxKey int

var userKey ctxKey

// NewContextWithUser returns a new [context.Context] that carries value user.
func NewContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the user stored in the ctx, if any.
func GetUserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userKey).(*User)
	return user, ok
}
