package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seriesBatchSize is the number of occurrences inserted per statement.
const seriesBatchSize = 100

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRepository(db *gorm.DB) *repository {
	return &repository{db}
}

type repository struct {
	db *gorm.DB
}

func (r repository) Create(ctx context.Context, event *model.Event) error {
	ctx = context.WithoutCancel(ctx)
	err := r.db.WithContext(ctx).Create(event).Error
	if err != nil {
		return fmt.Errorf("failed to create event: %v", err)
	}
	return nil
}

func (r repository) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	var event *model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Categories").
		Preload("Participants").
		First(&event, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("event not found by id: %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find event %q: %v", id, err)
	}
	return event, nil
}

func (r repository) FindParticipant(ctx context.Context, eventID, userID uuid.UUID) (*model.EventParticipant, error) {
	var participant *model.EventParticipant
	err := r.db.
		WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errdef.NewNotFound("user %q is not a participant of event %q", userID, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find participant of event %q: %v", eventID, err)
	}
	return participant, nil
}

// FindStartingBetween returns the events, including their participants, starting within from and
// to, both inclusive.
func (r repository) FindStartingBetween(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	var events []model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Participants").
		Where("start >= ? AND start <= ?", from, to).
		Order("start").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find events starting between %s and %s: %v", from, to, err)
	}
	return events, nil
}

// SaveSeries stores the rule of parent and creates its occurrences, their participants and their
// links to the category. Either everything is stored or nothing is.
func (r repository) SaveSeries(ctx context.Context, parent *model.Event, occurrences []model.Event, categoryID uuid.UUID) error {
	// only cancel on parent cancellation, a series is never partially stored anyway
	ctx = context.WithoutCancel(ctx)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Model(parent).
			Select("RepeatType", "RepeatStep", "RepeatUntil", "MaxRepeatsCount").
			Updates(parent).Error
		if err != nil {
			return fmt.Errorf("failed to update event %q: %v", parent.ID, err)
		}

		if len(occurrences) == 0 {
			return nil
		}

		err = tx.Omit("Categories").CreateInBatches(&occurrences, seriesBatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to create occurrences of event %q: %v", parent.ID, err)
		}

		if categoryID == uuid.Nil {
			return nil
		}

		links := make([]model.EventCategoryLink, len(occurrences))
		for i, occurrence := range occurrences {
			links[i] = model.EventCategoryLink{EventID: occurrence.ID, CategoryID: categoryID}
		}
		err = tx.CreateInBatches(&links, seriesBatchSize).Error
		if err != nil {
			return fmt.Errorf("failed to link occurrences of event %q to category %q: %v", parent.ID, categoryID, err)
		}

		return nil
	})
}

// FindOccurrences returns the occurrences generated from the event, in order of their start.
func (r repository) FindOccurrences(ctx context.Context, parentID uuid.UUID) ([]model.Event, error) {
	var events []model.Event
	err := r.db.
		WithContext(ctx).
		Preload("Categories").
		Preload("Participants").
		Where("parent_id = ?", parentID).
		Order("start").
		Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find occurrences of event %q: %v", parentID, err)
	}
	return events, nil
}
