package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	tests := map[string]struct {
		err        error
		wantStatus int
	}{
		"BadRequest":              {err: errdef.NewBadRequest("bad"), wantStatus: http.StatusBadRequest},
		"InvalidTimeRange":        {err: errdef.NewInvalidTimeRange("start after end"), wantStatus: http.StatusBadRequest},
		"InvalidRecurrenceConfig": {err: errdef.NewInvalidRecurrenceConfig("no limit"), wantStatus: http.StatusBadRequest},
		"Unauthorized":            {err: errdef.NewUnauthorized("token"), wantStatus: http.StatusUnauthorized},
		"Forbidden":               {err: errdef.NewForbidden("no"), wantStatus: http.StatusForbidden},
		"NotAParticipant":         {err: errdef.NewNotAParticipant("stranger"), wantStatus: http.StatusForbidden},
		"InsufficientPermission":  {err: errdef.NewInsufficientPermission("viewer"), wantStatus: http.StatusForbidden},
		"NotFound":                {err: errdef.NewNotFound("gone"), wantStatus: http.StatusNotFound},
		"Duplicated":              {err: errdef.NewDuplicated("twice"), wantStatus: http.StatusConflict},
		"Conflict":                {err: errdef.NewConflict("clash"), wantStatus: http.StatusConflict},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			w := serve(test.err)

			assert.Equal(t, test.wantStatus, w.Code)
			assert.Equal(t, test.err.Error(), w.Body.String())
		})
	}

	t.Run("Internal", func(t *testing.T) {
		w := serve(errors.New("connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		id := w.Header().Get(middleware.CorrelationIDHeader)
		assert.NotEmpty(t, id)
		assert.Contains(t, w.Body.String(), id)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func serve(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID(), middleware.ErrorHandler())
	r.GET("/", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}
