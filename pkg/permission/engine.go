// Package permission decides whether a user may act on a category or an event.
//
// Both scopes are resolved from records which have already been loaded, nothing in here performs
// any I/O. A denial is reported as allowed=false. A missing participant row is reported as an
// error created with [errdef.NewNotAParticipant] so callers can tell the two apart.
package permission

import (
	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
)

// ResolveCategoryPermission returns true if actor holds at least required on category.
func ResolveCategoryPermission(actor model.User, category *model.Category, required model.CategoryPermission) (bool, error) {
	if category == nil {
		return false, errdef.NewNotFound("category not found")
	}

	if actor.IsSuperuser || category.OwnerID == actor.ID {
		return true, nil
	}

	participant, ok := category.Participant(actor.ID)
	if !ok {
		return false, errdef.NewNotAParticipant("user %q is not a participant of category %q", actor.ID, category.ID)
	}

	return participant.Permission.Satisfies(required), nil
}

// ResolveEventPermission returns true if actor holds at least required on event. category is the
// category the event is linked to and may be nil if the event isn't linked to any.
//
// A category role is inherited by the events of the category. Any role grants view, manage grants
// everything. Edit and organize on an event are never inherited from category edit since editors
// may only change events they created themselves.
func ResolveEventPermission(actor model.User, event *model.Event, category *model.Category, required model.EventPermission) (bool, error) {
	if event == nil {
		return false, errdef.NewNotFound("event not found")
	}

	if actor.IsSuperuser || event.CreatorID == actor.ID {
		return true, nil
	}

	inherited, member := categoryRole(actor.ID, category)
	if member {
		if inherited == model.CategoryManage || required == model.EventView {
			return true, nil
		}
	}

	participant, ok := event.Participant(actor.ID)
	if !ok {
		if member {
			return false, nil
		}
		return false, errdef.NewNotAParticipant("user %q is not a participant of event %q", actor.ID, event.ID)
	}

	return participant.Permission.Satisfies(required), nil
}

// categoryRole returns the role the user holds on category. The owner is treated as a manager.
func categoryRole(userID uuid.UUID, category *model.Category) (model.CategoryPermission, bool) {
	if category == nil {
		return "", false
	}
	if category.OwnerID == userID {
		return model.CategoryManage, true
	}
	participant, ok := category.Participant(userID)
	if !ok || !participant.Permission.Valid() {
		return "", false
	}
	return participant.Permission, true
}

// RequireCategoryPermission is like [ResolveCategoryPermission] but reports a denial as an error
// created with [errdef.NewInsufficientPermission].
func RequireCategoryPermission(actor model.User, category *model.Category, required model.CategoryPermission) error {
	allowed, err := ResolveCategoryPermission(actor, category, required)
	if err != nil {
		return err
	}
	if !allowed {
		return errdef.NewInsufficientPermission("user %q requires %q permission on category %q", actor.ID, required, category.ID)
	}
	return nil
}

// RequireEventPermission is like [ResolveEventPermission] but reports a denial as an error created
// with [errdef.NewInsufficientPermission].
func RequireEventPermission(actor model.User, event *model.Event, category *model.Category, required model.EventPermission) error {
	allowed, err := ResolveEventPermission(actor, event, category, required)
	if err != nil {
		return err
	}
	if !allowed {
		return errdef.NewInsufficientPermission("user %q requires %q permission on event %q", actor.ID, required, event.ID)
	}
	return nil
}
