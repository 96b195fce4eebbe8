package user

import (
	"context"
	"net/http"

	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func NewHandler(userService userService) Handler {
	return Handler{
		userService: userService,
	}
}

type Handler struct {
	userService userService
}

type userService interface {
	FindById(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// Me returns user details
func (h Handler) Me(c *gin.Context) {
	// swagger:route GET /me me
	//
	// User details
	//
	// Current user details
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   200: User
	//   401: Error
	//   404: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	u, err := h.userService.FindById(c.Request.Context(), user.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, u)
}
