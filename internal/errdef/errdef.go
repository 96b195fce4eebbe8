package errdef

import (
	"errors"
	"fmt"
)

func NewForbidden(format string, a ...any) error {
	return forbidden{fmt.Errorf(format, a...)}
}

type forbidden struct{ error }

func IsForbidden(err error) bool {
	var e forbidden
	return errors.As(err, &e)
}

func NewBadRequest(format string, a ...any) error {
	return badRequest{fmt.Errorf(format, a...)}
}

type badRequest struct{ error }

func IsBadRequest(err error) bool {
	var e badRequest
	return errors.As(err, &e)
}

func NewDuplicated(format string, a ...any) error {
	return duplicated{fmt.Errorf(format, a...)}
}

type duplicated struct{ error }

func IsDuplicated(err error) bool {
	var e duplicated
	return errors.As(err, &e)
}

func NewUnauthorized(format string, a ...any) error {
	return unauthorized{fmt.Errorf(format, a...)}
}

type unauthorized struct{ error }

func IsUnauthorized(err error) bool {
	var e unauthorized
	return errors.As(err, &e)
}

// NewNotFound creates an error representing a resource that could not be found.
func NewNotFound(format string, a ...any) error {
	return notFound{fmt.Errorf(format, a...)}
}

type notFound struct{ error }

// IsNotFound returns true if err is an error representing a resource that could not be found and false otherwise.
func IsNotFound(err error) bool {
	var e notFound
	return errors.As(err, &e)
}

// NewConflict creates an error representing a conflicting state.
func NewConflict(format string, a ...any) error {
	return conflict{fmt.Errorf(format, a...)}
}

type conflict struct{ error }

// IsConflict returns true if err is an error representing a conflict and false otherwise.
func IsConflict(err error) bool {
	var e conflict
	return errors.As(err, &e)
}

// NewNotAParticipant creates an error representing an actor without a participant row in the
// scope they tried to access.
func NewNotAParticipant(format string, a ...any) error {
	return notAParticipant{fmt.Errorf(format, a...)}
}

type notAParticipant struct{ error }

// IsNotAParticipant returns true if err is an error representing a missing participant row and false otherwise.
func IsNotAParticipant(err error) bool {
	var e notAParticipant
	return errors.As(err, &e)
}

// NewInsufficientPermission creates an error representing a participant whose permission level is
// below the required one.
func NewInsufficientPermission(format string, a ...any) error {
	return insufficientPermission{fmt.Errorf(format, a...)}
}

type insufficientPermission struct{ error }

func IsInsufficientPermission(err error) bool {
	var e insufficientPermission
	return errors.As(err, &e)
}

func NewInvalidTimeRange(format string, a ...any) error {
	return invalidTimeRange{fmt.Errorf(format, a...)}
}

type invalidTimeRange struct{ error }

func IsInvalidTimeRange(err error) bool {
	var e invalidTimeRange
	return errors.As(err, &e)
}

func NewInvalidRecurrenceConfig(format string, a ...any) error {
	return invalidRecurrenceConfig{fmt.Errorf(format, a...)}
}

type invalidRecurrenceConfig struct{ error }

func IsInvalidRecurrenceConfig(err error) bool {
	var e invalidRecurrenceConfig
	return errors.As(err, &e)
}

// NewDeliveryUnavailable creates an error representing a recipient without a live connection. It
// is expected and never fatal.
func NewDeliveryUnavailable(format string, a ...any) error {
	return deliveryUnavailable{fmt.Errorf(format, a...)}
}

type deliveryUnavailable struct{ error }

func IsDeliveryUnavailable(err error) bool {
	var e deliveryUnavailable
	return errors.As(err, &e)
}

// Code returns a stable identifier for the kind of err. It is sent to websocket clients which can
// not see HTTP status codes.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return "not_found"
	case IsNotAParticipant(err):
		return "not_a_participant"
	case IsInsufficientPermission(err):
		return "insufficient_permission"
	case IsInvalidTimeRange(err):
		return "invalid_time_range"
	case IsInvalidRecurrenceConfig(err):
		return "invalid_recurrence_config"
	case IsDeliveryUnavailable(err):
		return "delivery_unavailable"
	case IsBadRequest(err):
		return "bad_request"
	case IsForbidden(err):
		return "forbidden"
	case IsUnauthorized(err):
		return "unauthorized"
	case IsDuplicated(err), IsConflict(err):
		return "conflict"
	default:
		return "internal"
	}
}
