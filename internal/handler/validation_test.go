package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Rule struct {
	Type string `binding:"required,repeatUnit"`
}

func TestRegisterValidation(t *testing.T) {
	err := RegisterValidation()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)

	request, err := http.NewRequest("GET", "/", nil)
	assert.NoError(t, err)
	ctx.Request = request

	for _, unit := range []string{"hourly", "daily", "weekly", "monthly", "yearly"} {
		err = ctx.ShouldBind(&Rule{Type: unit})
		assert.NoError(t, err, unit)
	}

	for _, marker := range []string{"none", "recurring_parent", "recurring_duplicate", "fortnightly"} {
		err = ctx.ShouldBind(&Rule{Type: marker})
		assert.Error(t, err, marker)
		assert.Equal(t, "Key: 'Rule.Type' Error:Field validation for 'Type' failed on the 'repeatUnit' tag", err.Error())
	}
}
