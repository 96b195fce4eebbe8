package chat

import (
	"context"
	"fmt"
	"slices"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) Save(ctx context.Context, message *model.ChatMessage) error {
	// only use ctx for values (logging) and not cancellation signals, a message which has been
	// accepted is stored even if the connection of the sender drops
	ctx = context.WithoutCancel(ctx)

	err := r.db.WithContext(ctx).Create(message).Error
	if err != nil {
		return fmt.Errorf("failed to save chat message: %v", err)
	}
	return nil
}

// FindRecent returns the latest messages of the event, oldest first.
func (r repository) FindRecent(ctx context.Context, eventID uuid.UUID, limit int) ([]model.ChatMessage, error) {
	var messages []model.ChatMessage
	err := r.db.
		WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("created_at desc").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find chat messages of event %q: %v", eventID, err)
	}

	slices.Reverse(messages)
	return messages, nil
}
