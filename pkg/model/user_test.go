package model_test

import (
	"context"
	"testing"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	user := &model.User{
		ID:    uuid.New(),
		Email: "some@thing.dk",
	}

	ctx := model.NewContextWithUser(context.Background(), user)

	got, ok := model.GetUserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)

	_, ok = model.GetUserFromContext(context.Background())
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", model.User{Email: "ada@example.org", FullName: "Ada Lovelace"}.DisplayName())
	assert.Equal(t, "ada@example.org", model.User{Email: "ada@example.org"}.DisplayName())
}
