package chat

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/internal/handler"
	"github.com/dhis2-sre/im-calendar/pkg/presence"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	maxFrameSize = 16 * 1024
	writeTimeout = 10 * time.Second
)

func NewHandler(logger *slog.Logger, registry *presence.Registry, relay *Relay, allowedOrigins []string) Handler {
	return Handler{
		logger:   logger,
		registry: registry,
		relay:    relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

type Handler struct {
	logger   *slog.Logger
	registry *presence.Registry
	relay    *Relay
	upgrader websocket.Upgrader
}

func checkOrigin(allowedOrigins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
	}
}

// Connect upgrades the request to a websocket, registers it as the connection of the
// authenticated user and relays chat frames until the connection closes.
func (h Handler) Connect(c *gin.Context) {
	// swagger:route GET /ws connect
	//
	// Open a websocket for chat and notifications
	//
	// security:
	//   oauth2:
	//
	// responses:
	//   101:
	//   401: Error
	user, err := handler.GetUserFromContext(c)
	if err != nil {
		_ = c.Error(errdef.NewUnauthorized("%v", err))
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already responded
		h.logger.InfoContext(c.Request.Context(), "Failed to upgrade connection", "error", err)
		return
	}
	ws.SetReadLimit(maxFrameSize)

	ctx := c.Request.Context()
	conn := presence.NewWebSocketConnection(ws, writeTimeout)
	h.registry.Connect(user.ID, conn)
	defer func() {
		h.registry.Disconnect(user.ID, conn)
		_ = ws.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.InfoContext(ctx, "Connection closed unexpectedly", "error", err)
			}
			return
		}

		var frame InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			h.registry.SendToUser(user.ID, ErrorFrame{Type: TypeError, Code: "bad_request", Message: "frames must be JSON objects"})
			continue
		}

		// errors have been sent to the user already
		_ = h.relay.Handle(ctx, *user, frame)
	}
}
