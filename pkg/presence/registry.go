// Package presence keeps track of which users are connected and which chat rooms they joined.
package presence

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize is the number of payloads buffered per connection.
const DefaultQueueSize = 32

// Connection is a live, bidirectional connection to a single user.
type Connection interface {
	Send(payload any) error
	Close() error
}

type session struct {
	conn     Connection
	outbound chan any
	rooms    map[uuid.UUID]struct{}
	closed   bool
}

// Registry maps users to their live connection and rooms to their members. A user has at most one
// connection. Payloads are queued per connection and written by a goroutine owned by the session
// so a slow connection never blocks the registry.
type Registry struct {
	logger    *slog.Logger
	queueSize int
	lock      sync.Mutex
	sessions  map[uuid.UUID]*session
	rooms     map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewRegistry(logger *slog.Logger, queueSize int) *Registry {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Registry{
		logger:    logger,
		queueSize: queueSize,
		sessions:  make(map[uuid.UUID]*session),
		rooms:     make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Connect registers conn as the connection of the user. A previous connection of the same user is
// closed and its rooms are left.
func (r *Registry) Connect(userID uuid.UUID, conn Connection) {
	s := &session{
		conn:     conn,
		outbound: make(chan any, r.queueSize),
		rooms:    make(map[uuid.UUID]struct{}),
	}

	r.lock.Lock()
	if previous, ok := r.sessions[userID]; ok {
		r.logger.Info("Replacing connection", "userId", userID)
		r.closeSession(userID, previous)
	}
	r.sessions[userID] = s
	r.lock.Unlock()

	go r.write(userID, s)
}

// Disconnect removes the user and all its room memberships. Nothing happens if conn isn't the
// current connection of the user.
func (r *Registry) Disconnect(userID uuid.UUID, conn Connection) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[userID]
	if !ok || s.conn != conn {
		return
	}
	r.closeSession(userID, s)
}

// CloseAll disconnects every user. Queued payloads are still written before the connections are
// closed.
func (r *Registry) CloseAll() {
	r.lock.Lock()
	defer r.lock.Unlock()

	for userID, s := range r.sessions {
		r.closeSession(userID, s)
	}
}

// closeSession must be called with the lock held.
func (r *Registry) closeSession(userID uuid.UUID, s *session) {
	for roomID := range s.rooms {
		r.removeMember(roomID, userID)
	}
	if current, ok := r.sessions[userID]; ok && current == s {
		delete(r.sessions, userID)
	}
	if !s.closed {
		s.closed = true
		close(s.outbound)
	}
}

// removeMember must be called with the lock held.
func (r *Registry) removeMember(roomID, userID uuid.UUID) {
	members, ok := r.rooms[roomID]
	if !ok {
		return
	}
	delete(members, userID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
}

func (r *Registry) write(userID uuid.UUID, s *session) {
	defer func() {
		if err := s.conn.Close(); err != nil {
			r.logger.Debug("Failed to close connection", "userId", userID, "error", err)
		}
	}()

	for payload := range s.outbound {
		if err := s.conn.Send(payload); err != nil {
			r.logger.Info("Failed to send to connection, disconnecting", "userId", userID, "error", err)
			r.Disconnect(userID, s.conn)
			for range s.outbound {
			}
			return
		}
	}
}

// JoinRoom adds the user to the room. It returns false if the user isn't connected.
func (r *Registry) JoinRoom(userID, roomID uuid.UUID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	s.rooms[roomID] = struct{}{}
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[uuid.UUID]struct{})
		r.rooms[roomID] = members
	}
	members[userID] = struct{}{}
	return true
}

func (r *Registry) LeaveRoom(userID, roomID uuid.UUID) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if s, ok := r.sessions[userID]; ok {
		delete(s.rooms, roomID)
	}
	r.removeMember(roomID, userID)
}

// IsMember returns true if the user is connected and has joined the room.
func (r *Registry) IsMember(userID, roomID uuid.UUID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[userID]
	if !ok || s.closed {
		return false
	}
	_, ok = s.rooms[roomID]
	return ok
}

// Members returns the connected members of the room. Members without a live connection are
// removed.
func (r *Registry) Members(roomID uuid.UUID) []uuid.UUID {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.liveMembers(roomID)
}

// liveMembers must be called with the lock held.
func (r *Registry) liveMembers(roomID uuid.UUID) []uuid.UUID {
	members := r.rooms[roomID]
	userIDs := make([]uuid.UUID, 0, len(members))
	for userID := range members {
		s, ok := r.sessions[userID]
		if !ok || s.closed {
			r.removeMember(roomID, userID)
			continue
		}
		userIDs = append(userIDs, userID)
	}
	return userIDs
}

// Connected returns true if the user has a live connection.
func (r *Registry) Connected(userID uuid.UUID) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[userID]
	return ok && !s.closed
}

// SendToUser queues payload for the user. It returns false if the user isn't connected or the
// queue of the connection is full.
func (r *Registry) SendToUser(userID uuid.UUID, payload any) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return false
	}
	return r.enqueue(userID, s, payload)
}

// BroadcastRoom queues payload for every connected member of the room and returns the number of
// members it was queued for.
func (r *Registry) BroadcastRoom(roomID uuid.UUID, payload any) int {
	r.lock.Lock()
	defer r.lock.Unlock()

	delivered := 0
	for _, userID := range r.liveMembers(roomID) {
		if r.enqueue(userID, r.sessions[userID], payload) {
			delivered++
		}
	}
	return delivered
}

// enqueue must be called with the lock held.
func (r *Registry) enqueue(userID uuid.UUID, s *session, payload any) bool {
	if s.closed {
		return false
	}
	select {
	case s.outbound <- payload:
		return true
	default:
		r.logger.Warn("Outbound queue full, dropping payload", "userId", userID)
		return false
	}
}
