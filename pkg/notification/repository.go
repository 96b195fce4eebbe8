package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db: db}
}

type repository struct {
	db *gorm.DB
}

// CreateIfAbsent creates the notification unless one for the same user, event and send time
// exists. Returns true if the notification was created.
func (r repository) CreateIfAbsent(ctx context.Context, notification *model.Notification) (bool, error) {
	// only cancel on parent cancellation, not on request termination
	ctx = context.WithoutCancel(ctx)
	result := r.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_id"}, {Name: "send_at"}},
			DoNothing: true,
		}).
		Create(notification)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create notification: %v", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindDue returns the pending notifications which should have been sent at now, oldest first.
func (r repository) FindDue(ctx context.Context, now time.Time) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		WithContext(ctx).
		Preload("Event").
		Preload("User").
		Where("sent = ? AND send_at <= ?", false, now).
		Order("send_at").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find due notifications: %v", err)
	}
	return notifications, nil
}

// FindPending returns the pending notifications of the event.
func (r repository) FindPending(ctx context.Context, eventID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.
		WithContext(ctx).
		Where("event_id = ? AND sent = ?", eventID, false).
		Order("send_at").
		Find(&notifications).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find pending notifications: %v", err)
	}
	return notifications, nil
}

func (r repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	ctx = context.WithoutCancel(ctx)
	err := r.db.
		WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]any{"sent": true, "sent_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification %q as sent: %v", id, err)
	}
	return nil
}

// PurgeSent deletes sent notifications due before the given time. Returns the number of deleted
// notifications.
func (r repository) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	ctx = context.WithoutCancel(ctx)
	result := r.db.
		WithContext(ctx).
		Where("sent = ? AND send_at < ?", true, before).
		Delete(&model.Notification{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge sent notifications: %v", result.Error)
	}
	return result.RowsAffected, nil
}
