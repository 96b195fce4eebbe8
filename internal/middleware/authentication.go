package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenQueryParameter is the query parameter carrying the access token of clients which can't set
// headers like browsers opening a websocket.
const TokenQueryParameter = "token"

func NewAuthentication(logger *slog.Logger, secret string, userService userService) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		logger:      logger,
		secret:      []byte(secret),
		userService: userService,
	}
}

type userService interface {
	FindById(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type AuthenticationMiddleware struct {
	logger      *slog.Logger
	secret      []byte
	userService userService
}

// TokenAuthentication authenticates the request using an HS256 signed access token. The subject
// of the token has to be the id of an active user. The user is stored on the gin context as well
// as on the request context.
func (m AuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	user, err := m.parseRequest(c.Request)
	if err != nil {
		m.logger.InfoContext(c.Request.Context(), "Token not valid", "error", err)
		_ = c.Error(errdef.NewUnauthorized("token not valid"))
		c.Abort()
		return
	}

	c.Set(handler.UserKey, user)
	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
	c.Next()
}

func (m AuthenticationMiddleware) parseRequest(request *http.Request) (*model.User, error) {
	// jwt.ParseRequest only parses the form of requests with a body, the query of a GET or a
	// websocket upgrade has to be parsed up front
	if err := request.ParseForm(); err != nil {
		return nil, fmt.Errorf("failed to parse query: %v", err)
	}

	token, err := jwt.ParseRequest(
		request,
		jwt.WithKey(jwa.HS256, m.secret),
		jwt.WithHeaderKey("Authorization"),
		jwt.WithFormKey(TokenQueryParameter),
	)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(token.Subject())
	if err != nil {
		return nil, fmt.Errorf("subject %q is not a user id: %v", token.Subject(), err)
	}

	user, err := m.userService.FindById(request.Context(), id)
	if err != nil {
		return nil, err
	}

	if !user.IsActive {
		return nil, fmt.Errorf("user %q is inactive", user.ID)
	}

	return user, nil
}
