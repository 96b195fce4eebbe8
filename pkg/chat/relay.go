// Package chat relays messages between the participants of an event.
package chat

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhis2-sre/im-calendar/internal/errdef"
	"github.com/dhis2-sre/im-calendar/pkg/model"
	"github.com/dhis2-sre/im-calendar/pkg/presence"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
)

// HistorySize is the number of messages sent to a user joining a room.
const HistorySize = 50

type participantFinder interface {
	FindParticipant(ctx context.Context, eventID, userID uuid.UUID) (*model.EventParticipant, error)
}

type messageRepository interface {
	Save(ctx context.Context, message *model.ChatMessage) error
	FindRecent(ctx context.Context, eventID uuid.UUID, limit int) ([]model.ChatMessage, error)
}

//goland:noinspection GoExportedFuncWithUnexportedType
func NewRelay(logger *slog.Logger, registry *presence.Registry, participants participantFinder, messages messageRepository, now func() time.Time) *Relay {
	return &Relay{
		logger:       logger,
		registry:     registry,
		participants: participants,
		messages:     messages,
		now:          now,
	}
}

// Relay routes chat frames to the rooms of events. Every frame is checked against the current
// participants of the event, a user removed from an event is evicted from its room on the next
// message. Errors are only ever reported to the user causing them.
type Relay struct {
	logger       *slog.Logger
	registry     *presence.Registry
	participants participantFinder
	messages     messageRepository
	now          func() time.Time
}

// Handle validates frame and dispatches it. Errors have already been reported to the user when
// returned.
func (r *Relay) Handle(ctx context.Context, user model.User, frame InboundFrame) error {
	if err := binding.Validator.ValidateStruct(&frame); err != nil {
		err = errdef.NewBadRequest("invalid frame: %v", err)
		r.reject(user.ID, frame.EventID, errdef.Code(err), err)
		return err
	}

	switch frame.Type {
	case TypeJoin:
		return r.Join(ctx, user, frame.EventID)
	case TypeLeave:
		r.Leave(user, frame.EventID)
		return nil
	default:
		return r.Receive(ctx, user, frame.EventID, frame.Content)
	}
}

// Join adds the user to the room of the event and sends the latest messages of the room.
func (r *Relay) Join(ctx context.Context, user model.User, eventID uuid.UUID) error {
	if _, err := r.participant(ctx, user.ID, eventID); err != nil {
		r.reject(user.ID, eventID, errdef.Code(err), err)
		return err
	}

	if !r.registry.JoinRoom(user.ID, eventID) {
		return errdef.NewDeliveryUnavailable("user %q isn't connected", user.ID)
	}
	r.registry.SendToUser(user.ID, RoomFrame{Type: TypeJoined, EventID: eventID})

	messages, err := r.messages.FindRecent(ctx, eventID, HistorySize)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to find chat history", "eventId", eventID, "error", err)
		return nil
	}
	history := HistoryFrame{Type: TypeHistory, EventID: eventID, Messages: make([]MessageFrame, len(messages))}
	for i, message := range messages {
		var name string
		if message.User != nil {
			name = message.User.DisplayName()
		}
		history.Messages[i] = newMessageFrame(message, name)
	}
	r.registry.SendToUser(user.ID, history)

	return nil
}

func (r *Relay) Leave(user model.User, eventID uuid.UUID) {
	r.registry.LeaveRoom(user.ID, eventID)
	r.registry.SendToUser(user.ID, RoomFrame{Type: TypeLeft, EventID: eventID})
}

// Receive stores a message sent by the user and broadcasts it to the room of the event.
func (r *Relay) Receive(ctx context.Context, user model.User, eventID uuid.UUID, content string) error {
	if !r.registry.IsMember(user.ID, eventID) {
		err := errdef.NewBadRequest("join the room of event %q before sending messages", eventID)
		r.reject(user.ID, eventID, errdef.Code(err), err)
		return err
	}

	participant, err := r.participant(ctx, user.ID, eventID)
	if err != nil {
		if errdef.IsNotAParticipant(err) {
			r.registry.LeaveRoom(user.ID, eventID)
		}
		r.reject(user.ID, eventID, errdef.Code(err), err)
		return err
	}

	if participant.IsListener {
		err := errdef.NewInsufficientPermission("listeners cannot send messages")
		r.reject(user.ID, eventID, CodeListenerCannotSend, err)
		return err
	}

	message := &model.ChatMessage{
		CreatedAt: r.now(),
		EventID:   eventID,
		UserID:    user.ID,
		Content:   content,
	}
	if err := r.messages.Save(ctx, message); err != nil {
		r.reject(user.ID, eventID, errdef.Code(err), err)
		return err
	}

	delivered := r.registry.BroadcastRoom(eventID, newMessageFrame(*message, user.DisplayName()))
	r.logger.DebugContext(ctx, "Relayed chat message", "eventId", eventID, "delivered", delivered)
	return nil
}

func (r *Relay) participant(ctx context.Context, userID, eventID uuid.UUID) (*model.EventParticipant, error) {
	participant, err := r.participants.FindParticipant(ctx, eventID, userID)
	if errdef.IsNotFound(err) {
		return nil, errdef.NewNotAParticipant("user %q is not a participant of event %q", userID, eventID)
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *Relay) reject(userID, eventID uuid.UUID, code string, err error) {
	message := err.Error()
	if code == "internal" {
		r.logger.Error("Failed to relay chat frame", "userId", userID, "eventId", eventID, "error", err)
		message = "something went wrong"
	}
	r.registry.SendToUser(userID, ErrorFrame{
		Type:    TypeError,
		EventID: eventID,
		Code:    code,
		Message: message,
	})
}
