// Package recurrence generates the occurrences of a recurring event.
package recurrence

import (
	"fmt"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// Horizon bounds every series regardless of the limits of its rule.
const Horizon = 10 * 365 * 24 * time.Hour

// Rule describes how an event repeats.
type Rule struct {
	Type     model.RepeatType
	Step     uint
	Until    *time.Time
	MaxCount uint
}

// RuleOf returns the rule stored on event.
func RuleOf(event model.Event) Rule {
	return Rule{
		Type:     event.RepeatType,
		Step:     event.RepeatStep,
		Until:    event.RepeatUntil,
		MaxCount: event.MaxRepeatsCount,
	}
}

// Occurrence is a single generated instance of a recurring event.
type Occurrence struct {
	Start        time.Time
	End          time.Time
	CategoryID   uuid.UUID
	Participants []model.EventParticipant
}

// UnitDelta returns the fixed distance between two occurrences. Months are 30 days and years are
// 365 days. It returns 0 for types which aren't a recurrence unit.
func UnitDelta(t model.RepeatType, step uint) time.Duration {
	day := 24 * time.Hour
	n := time.Duration(step)
	switch t {
	case model.RepeatHourly:
		return n * time.Hour
	case model.RepeatDaily:
		return n * day
	case model.RepeatWeekly:
		return n * 7 * day
	case model.RepeatMonthly:
		return n * 30 * day
	case model.RepeatYearly:
		return n * 365 * day
	default:
		return 0
	}
}

// Validate rejects rules which can't be expanded into a bounded series. It is meant to be called
// before a rule is stored or expanded.
func Validate(start, end time.Time, rule Rule) error {
	if !start.Before(end) {
		return errdef.NewInvalidTimeRange("start %s must be before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	switch {
	case rule.Type == "" || rule.Type == model.RepeatNone:
		return nil
	case rule.Type == model.RecurringParent:
		return errdef.NewInvalidRecurrenceConfig("event has already been expanded")
	case rule.Type == model.RecurringDuplicate:
		return errdef.NewInvalidRecurrenceConfig("an occurrence of a series can't repeat")
	case !rule.Type.IsUnit():
		return errdef.NewInvalidRecurrenceConfig("unknown repeat type %q", rule.Type)
	}

	if rule.Until != nil && !rule.Until.After(start) {
		return errdef.NewInvalidTimeRange("repeat until %s must be after start %s", rule.Until.Format(time.RFC3339), start.Format(time.RFC3339))
	}

	if rule.Step > 0 && rule.Until == nil && rule.MaxCount == 0 {
		return errdef.NewInvalidRecurrenceConfig("%s events need either repeat until or max repeats count", rule.Type)
	}

	return nil
}

type Expander struct {
	now           func() time.Time
	calendarAware bool
}

// NewExpander creates an Expander. If calendarAware is true months and years follow the calendar
// instead of being fixed to 30 and 365 days.
func NewExpander(now func() time.Time, calendarAware bool) Expander {
	return Expander{
		now:           now,
		calendarAware: calendarAware,
	}
}

// Expand returns the occurrences following base according to the rule stored on base. base itself
// is never part of the result. Occurrences stop at the first of max repeats count, repeat until or
// now plus [Horizon].
func (e Expander) Expand(base model.Event) ([]Occurrence, error) {
	rule := RuleOf(base)
	if !rule.Type.IsUnit() || rule.Step == 0 {
		return nil, nil
	}

	start := base.Start.UTC()
	until := e.now().UTC().Add(Horizon)
	if rule.Until != nil && rule.Until.Before(until) {
		until = rule.Until.UTC()
	}

	option := e.option(rule)
	option.Dtstart = start
	option.Until = until
	if rule.MaxCount > 0 {
		// dtstart is always the first instance
		option.Count = int(rule.MaxCount) + 1
	}

	r, err := rrule.NewRRule(option)
	if err != nil {
		return nil, fmt.Errorf("failed to create recurrence rule for event %q: %v", base.ID, err)
	}

	duration := base.End.Sub(base.Start)
	// rrule truncates dtstart to whole seconds
	remainder := start.Sub(start.Truncate(time.Second))
	categoryID := base.CategoryID()
	var occurrences []Occurrence
	for _, t := range r.All() {
		t = t.Add(remainder)
		if !t.After(start) {
			continue
		}
		if t.After(until) {
			break
		}
		occurrenceStart := t.In(base.Start.Location())
		occurrences = append(occurrences, Occurrence{
			Start:        occurrenceStart,
			End:          occurrenceStart.Add(duration),
			CategoryID:   categoryID,
			Participants: copyParticipants(base.Participants),
		})
		if rule.MaxCount > 0 && uint(len(occurrences)) == rule.MaxCount {
			break
		}
	}

	return occurrences, nil
}

func (e Expander) option(rule Rule) rrule.ROption {
	step := int(rule.Step)
	switch rule.Type {
	case model.RepeatHourly:
		return rrule.ROption{Freq: rrule.HOURLY, Interval: step}
	case model.RepeatDaily:
		return rrule.ROption{Freq: rrule.DAILY, Interval: step}
	case model.RepeatWeekly:
		return rrule.ROption{Freq: rrule.WEEKLY, Interval: step}
	case model.RepeatMonthly:
		if e.calendarAware {
			return rrule.ROption{Freq: rrule.MONTHLY, Interval: step}
		}
		return rrule.ROption{Freq: rrule.DAILY, Interval: 30 * step}
	default:
		if e.calendarAware {
			return rrule.ROption{Freq: rrule.YEARLY, Interval: step}
		}
		return rrule.ROption{Freq: rrule.DAILY, Interval: 365 * step}
	}
}

func copyParticipants(participants []model.EventParticipant) []model.EventParticipant {
	if len(participants) == 0 {
		return nil
	}
	copies := make([]model.EventParticipant, len(participants))
	for i, p := range participants {
		copies[i] = model.EventParticipant{
			UserID:     p.UserID,
			IsCreator:  p.IsCreator,
			IsListener: p.IsListener,
			Permission: p.Permission,
		}
	}
	return copies
}

// Duplicate returns the event stored for occurrence. It carries the attributes of parent but no
// rule of its own.
func Duplicate(parent model.Event, occurrence Occurrence) model.Event {
	parentID := parent.ID
	return model.Event{
		Title:        parent.Title,
		Description:  parent.Description,
		Kind:         parent.Kind,
		Priority:     parent.Priority,
		IsPrivate:    parent.IsPrivate,
		Start:        occurrence.Start,
		End:          occurrence.End,
		CreatorID:    parent.CreatorID,
		RepeatType:   model.RecurringDuplicate,
		ParentID:     &parentID,
		Participants: occurrence.Participants,
	}
}
