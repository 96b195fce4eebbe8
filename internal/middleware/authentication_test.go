package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/internal/middleware"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenAuthentication(t *testing.T) {
	active := &model.User{ID: uuid.New(), Email: "active@dhis2.org", IsActive: true}
	inactive := &model.User{ID: uuid.New(), Email: "inactive@dhis2.org"}
	users := userServiceStub{active.ID: active, inactive.ID: inactive}

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authentication := middleware.NewAuthentication(logger, secret, users)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.GET("/", authentication.TokenAuthentication, func(c *gin.Context) {
		user, err := handler.GetUserFromContext(c)
		require.NoError(t, err)
		contextUser, ok := model.GetUserFromContext(c.Request.Context())
		require.True(t, ok)
		assert.Equal(t, user, contextUser)
		c.String(http.StatusOK, user.Email)
	})

	tests := map[string]struct {
		request    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		"Header": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, active.ID.String(), time.Hour))
			},
			wantStatus: http.StatusOK,
			wantBody:   "active@dhis2.org",
		},
		"QueryParameter": {
			request: func(r *http.Request) {
				r.URL.RawQuery = "token=" + sign(t, secret, active.ID.String(), time.Hour)
			},
			wantStatus: http.StatusOK,
			wantBody:   "active@dhis2.org",
		},
		"MissingToken": {
			request:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		"WrongSecret": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, "not-the-secret", active.ID.String(), time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
		},
		"Expired": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, active.ID.String(), -time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
		},
		"SubjectIsNotAnID": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, "active@dhis2.org", time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
		},
		"UnknownUser": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, uuid.NewString(), time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
		},
		"InactiveUser": {
			request: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, inactive.ID.String(), time.Hour))
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			test.request(req)

			r.ServeHTTP(w, req)

			assert.Equal(t, test.wantStatus, w.Code)
			if test.wantBody != "" {
				assert.Equal(t, test.wantBody, w.Body.String())
			}
		})
	}
}

func sign(t *testing.T, key, subject string, expiresIn time.Duration) string {
	t.Helper()
	token, err := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(expiresIn)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, []byte(key)))
	require.NoError(t, err)
	return string(signed)
}

type userServiceStub map[uuid.UUID]*model.User

func (s userServiceStub) FindById(_ context.Context, id uuid.UUID) (*model.User, error) {
	user, ok := s[id]
	if !ok {
		return nil, errdef.NewNotFound("failed to find user with id %q", id)
	}
	return user, nil
}
