package errdef_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dhis2-sre/im-calendar/internal/errdef"

	"github.com/stretchr/testify/assert"
)

func TestIsForbidden(t *testing.T) {
	assert.False(t, errdef.IsForbidden(errors.New("some error")))
	assert.True(t, errdef.IsForbidden(errdef.NewForbidden("some error")))
}

func TestIsBadRequest(t *testing.T) {
	assert.False(t, errdef.IsBadRequest(errors.New("some error")))
	assert.True(t, errdef.IsBadRequest(errdef.NewBadRequest("some error")))
}

func TestIsDuplicate(t *testing.T) {
	assert.False(t, errdef.IsDuplicated(errors.New("some error")))
	assert.True(t, errdef.IsDuplicated(errdef.NewDuplicated("some error")))
}

func TestIsUnauthorized(t *testing.T) {
	assert.False(t, errdef.IsUnauthorized(errors.New("some error")))
	assert.True(t, errdef.IsUnauthorized(errdef.NewUnauthorized("some error")))
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, errdef.IsNotFound(errors.New("some error")))
	assert.True(t, errdef.IsNotFound(errdef.NewNotFound("some error")))
}

func TestIsNotAParticipant(t *testing.T) {
	assert.False(t, errdef.IsNotAParticipant(errdef.NewInsufficientPermission("some error")))
	assert.True(t, errdef.IsNotAParticipant(errdef.NewNotAParticipant("some error")))
}

func TestIsInsufficientPermission(t *testing.T) {
	assert.False(t, errdef.IsInsufficientPermission(errdef.NewNotAParticipant("some error")))
	assert.True(t, errdef.IsInsufficientPermission(errdef.NewInsufficientPermission("some error")))
}

func TestIsWrapped(t *testing.T) {
	err := fmt.Errorf("failed to expand event: %w", errdef.NewInvalidRecurrenceConfig("neither until nor count"))

	assert.True(t, errdef.IsInvalidRecurrenceConfig(err))
	assert.False(t, errdef.IsInvalidTimeRange(err))
}

func TestCode(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"Nil":                     {nil, ""},
		"NotFound":                {errdef.NewNotFound("event %d", 1), "not_found"},
		"NotAParticipant":         {errdef.NewNotAParticipant("no row"), "not_a_participant"},
		"InsufficientPermission":  {errdef.NewInsufficientPermission("view < edit"), "insufficient_permission"},
		"InvalidTimeRange":        {errdef.NewInvalidTimeRange("start after end"), "invalid_time_range"},
		"InvalidRecurrenceConfig": {errdef.NewInvalidRecurrenceConfig("no limit"), "invalid_recurrence_config"},
		"DeliveryUnavailable":     {errdef.NewDeliveryUnavailable("offline"), "delivery_unavailable"},
		"Duplicated":              {errdef.NewDuplicated("dup"), "conflict"},
		"Unknown":                 {errors.New("boom"), "internal"},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, errdef.Code(test.err))
		})
	}
}
