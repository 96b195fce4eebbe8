package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func GetPathParameter(c *gin.Context, parameter string) (uuid.UUID, bool) {
	idParam := c.Param(parameter)
	id, err := uuid.Parse(idParam)
	if err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, fmt.Errorf("error parsing %q: %v", parameter, err))
		return uuid.Nil, false
	}
	return id, true
}
