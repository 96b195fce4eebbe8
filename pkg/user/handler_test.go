package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_Me(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	userService := &mockUserService{}
	userService.
		On("FindById", mock.Anything, id).
		Return(&model.User{ID: id, Email: "someone@dhis2.org"}, nil)
	h := NewHandler(userService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)
	c.Set(handler.UserKey, &model.User{ID: id})

	h.Me(c)

	require.Empty(t, c.Errors)
	assert.Equal(t, http.StatusOK, recorder.Code)
	var body model.User
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "someone@dhis2.org", body.Email)
	userService.AssertExpectations(t)
}

func TestHandler_Me_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	id := uuid.New()
	userService := &mockUserService{}
	userService.
		On("FindById", mock.Anything, id).
		Return(nil, errdef.NewNotFound("failed to find user with id %q", id))
	h := NewHandler(userService)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/me", nil)
	c.Set(handler.UserKey, &model.User{ID: id})

	h.Me(c)

	require.Len(t, c.Errors, 1)
	assert.True(t, errdef.IsNotFound(c.Errors.Last()))
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) FindById(ctx context.Context, id uuid.UUID) (*model.User, error) {
	called := m.Called(ctx, id)
	user, _ := called.Get(0).(*model.User)
	return user, called.Error(1)
}
