package chat

import (
	"time"

	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/google/uuid"
)

// Frame types exchanged over the websocket.
const (
	TypeJoin    = "join"
	TypeLeave   = "leave"
	TypeMessage = "message"
	TypeJoined  = "joined"
	TypeLeft    = "left"
	TypeHistory = "history"
	TypeError   = "error"
)

// CodeListenerCannotSend is sent to listeners trying to send a message.
const CodeListenerCannotSend = "listener_cannot_send"

// InboundFrame is a frame received from a client.
type InboundFrame struct {
	Type    string    `json:"type" binding:"required,oneof=join leave message"`
	EventID uuid.UUID `json:"eventId" binding:"required"`
	Content string    `json:"content" binding:"required_if=Type message,max=4000"`
}

type MessageFrame struct {
	Type     string    `json:"type"`
	ID       uuid.UUID `json:"id"`
	EventID  uuid.UUID `json:"eventId"`
	UserID   uuid.UUID `json:"userId"`
	UserName string    `json:"userName"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

func newMessageFrame(message model.ChatMessage, userName string) MessageFrame {
	return MessageFrame{
		Type:     TypeMessage,
		ID:       message.ID,
		EventID:  message.EventID,
		UserID:   message.UserID,
		UserName: userName,
		Content:  message.Content,
		SentAt:   message.CreatedAt,
	}
}

type RoomFrame struct {
	Type    string    `json:"type"`
	EventID uuid.UUID `json:"eventId"`
}

type HistoryFrame struct {
	Type     string         `json:"type"`
	EventID  uuid.UUID      `json:"eventId"`
	Messages []MessageFrame `json:"messages"`
}

type ErrorFrame struct {
	Type    string    `json:"type"`
	EventID uuid.UUID `json:"eventId"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}
