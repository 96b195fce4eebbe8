// Package event stores events and expands recurring events into series of occurrences.
package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/dhis2-sre/im-calendar/pkg/permission"
	"github.com/dhis2-sre/im-calendar/pkg/recurrence"
	"github.com/google/uuid"
)

type eventRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error)
	SaveSeries(ctx context.Context, parent *model.Event, occurrences []model.Event, categoryID uuid.UUID) error
}

type categoryRepository interface {
	Find(ctx context.Context, id uuid.UUID) (*model.Category, error)
}

type expander interface {
	Expand(base model.Event) ([]recurrence.Occurrence, error)
}

func NewService(logger *slog.Logger, repository eventRepository, categoryRepository categoryRepository, expander expander) *Service {
	return &Service{
		logger:             logger,
		repository:         repository,
		categoryRepository: categoryRepository,
		expander:           expander,
	}
}

type Service struct {
	logger             *slog.Logger
	repository         eventRepository
	categoryRepository categoryRepository
	expander           expander
}

// Repeat sets the rule of the event and stores the occurrences it expands to. The actor needs to
// be allowed to edit the event. An event can only be repeated once.
func (s Service) Repeat(ctx context.Context, actor model.User, id uuid.UUID, rule recurrence.Rule) (*model.Event, []model.Event, error) {
	event, err := s.repository.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var category *model.Category
	if categoryID := event.CategoryID(); categoryID != uuid.Nil {
		category, err = s.categoryRepository.Find(ctx, categoryID)
		if err != nil {
			return nil, nil, err
		}
	}

	err = permission.RequireEventPermission(actor, event, category, model.EventEdit)
	if err != nil {
		return nil, nil, err
	}

	switch event.RepeatType {
	case model.RecurringParent:
		return nil, nil, errdef.NewInvalidRecurrenceConfig("event %q has already been repeated", event.ID)
	case model.RecurringDuplicate:
		return nil, nil, errdef.NewInvalidRecurrenceConfig("event %q is an occurrence of another event", event.ID)
	}

	if err := recurrence.Validate(event.Start, event.End, rule); err != nil {
		return nil, nil, err
	}

	event.RepeatType = rule.Type
	event.RepeatStep = rule.Step
	event.RepeatUntil = utc(rule.Until)
	event.MaxRepeatsCount = rule.MaxCount

	occurrences, err := s.expander.Expand(*event)
	if err != nil {
		return nil, nil, err
	}

	duplicates := make([]model.Event, len(occurrences))
	for i, occurrence := range occurrences {
		duplicates[i] = recurrence.Duplicate(*event, occurrence)
	}
	if len(duplicates) > 0 {
		event.RepeatType = model.RecurringParent
	}

	err = s.repository.SaveSeries(ctx, event, duplicates, event.CategoryID())
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "Repeated event", "eventId", event.ID, "repeatType", rule.Type, "occurrences", len(duplicates))
	return event, duplicates, nil
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
