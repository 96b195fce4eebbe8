package handler

import (
	"errors"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin"
)

// UserKey is the key under which the authenticated user is stored on the gin context.
const UserKey = "user"

func GetUserFromContext(c *gin.Context) (*model.User, error) {
	userData, exists := c.Get(UserKey)

	if !exists {
		return nil, errors.New("user not found on context")
	}

	user, ok := userData.(*model.User)
	if !ok {
		return nil, errors.New("failed to parse user data")
	}
	return user, nil
}
