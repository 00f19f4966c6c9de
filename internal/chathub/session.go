package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"penpal/backend/internal/config"
	"penpal/backend/internal/models"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a Session.
type State int

const (
	StateConnecting State = iota
	StateAuthorized
	StateJoined
	StateClosed
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthorized:
		return "authorized"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	case StateRejected:
		return "rejected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session is one user's connection to one room. It is transport-agnostic:
// inbound frames go through HandleFrame, outbound events come out of Outbound.
type Session struct {
	id       string
	roomID   string
	identity models.Identity
	registry Registry
	store    MessageStore

	mu    sync.Mutex
	state State
	send  chan models.Event
}

func NewSession(roomID string, identity models.Identity, registry Registry, store MessageStore) *Session {
	return &Session{
		id:       uuid.New().String(),
		roomID:   roomID,
		identity: identity,
		registry: registry,
		store:    store,
		state:    StateConnecting,
		send:     make(chan models.Event, config.SendBufferSize),
	}
}

var _ Member = (*Session)(nil)

func (s *Session) MemberID() string { return s.id }
func (s *Session) RoomID() string   { return s.roomID }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outbound is closed once the session is closed or rejected.
func (s *Session) Outbound() <-chan models.Event { return s.send }

// Deliver queues an event for the socket. Typing events from this session's
// own user are swallowed.
func (s *Session) Deliver(event models.Event) bool {
	if event.Type == models.EventTyping && event.Username == s.identity.Username {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed || s.state == StateRejected {
		return false
	}
	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

// Open authorizes the identity against the room and joins the room group.
// On failure the session ends up Rejected and the returned error tells why.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateConnecting {
		s.mu.Unlock()
		return ErrSessionState
	}
	if !s.identity.Authenticated {
		s.rejectLocked()
		s.mu.Unlock()
		return ErrUnauthenticated
	}
	s.state = StateAuthorized
	s.mu.Unlock()

	ok, err := s.store.IsParticipant(ctx, s.roomID, s.identity.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to check participant %s in room %s: %v", s.identity.UserID, s.roomID, err)
	}
	s.mu.Lock()
	if s.state != StateAuthorized {
		s.mu.Unlock()
		return ErrSessionState
	}
	if err != nil || !ok {
		s.rejectLocked()
		s.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotParticipant, err)
		}
		return ErrNotParticipant
	}
	s.state = StateJoined
	s.registry.Join(s.roomID, s)
	s.mu.Unlock()

	log.Printf("INFO: User %s joined room %s.", s.identity.Username, s.roomID)
	return s.registry.Broadcast(ctx, s.roomID, models.Event{
		Type:     models.EventUserJoined,
		Username: s.identity.Username,
	}, "")
}

func (s *Session) rejectLocked() {
	s.state = StateRejected
	close(s.send)
}

// Close leaves the room and tells the remaining members. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed || s.state == StateRejected {
		s.mu.Unlock()
		return
	}
	wasJoined := s.state == StateJoined
	s.state = StateClosed
	close(s.send)
	s.mu.Unlock()

	if !wasJoined {
		return
	}

	s.registry.Leave(s.roomID, s)
	ctx, cancel := context.WithTimeout(context.Background(), config.SessionCloseTTL)
	defer cancel()
	_ = s.registry.Broadcast(ctx, s.roomID, models.Event{
		Type:     models.EventUserLeft,
		Username: s.identity.Username,
	}, s.id)
	log.Printf("INFO: User %s left room %s.", s.identity.Username, s.roomID)
}

// HandleFrame processes one inbound text frame. Frames are ignored unless
// the session is joined; malformed and unknown frames are dropped.
func (s *Session) HandleFrame(ctx context.Context, raw []byte) {
	if s.State() != StateJoined {
		return
	}

	var frame models.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return
	}
	if frame.Type == "" {
		frame.Type = models.FrameChatMessage
	}

	switch frame.Type {
	case models.FrameChatMessage:
		s.handleChatMessage(ctx, frame.Message)
	case models.FrameTyping:
		isTyping := true
		if frame.IsTyping != nil {
			isTyping = *frame.IsTyping
		}
		_ = s.registry.Broadcast(ctx, s.roomID, models.Event{
			Type:     models.EventTyping,
			Username: s.identity.Username,
			IsTyping: &isTyping,
		}, "")
	case models.FrameReadReceipt:
		s.handleReadReceipt(ctx, frame.MessageIDs)
	default:
		// unknown frame types are ignored
	}
}

func (s *Session) handleChatMessage(ctx context.Context, text string) {
	content := strings.TrimSpace(text)
	if content == "" || utf8.RuneCountInString(content) > config.MaxMessageLength {
		return
	}

	msg, err := s.store.CreateMessage(ctx, s.roomID, s.identity.UserID, content)
	if err != nil {
		log.Printf("ERROR: Failed to save message from %s in room %s: %v", s.identity.UserID, s.roomID, err)
		return
	}

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_ = s.registry.Broadcast(ctx, s.roomID, models.Event{
		Type:      models.EventChatMessage,
		Username:  s.identity.Username,
		Message:   msg.Content,
		Timestamp: &ts,
		MessageID: msg.ID,
	}, "")
}

func (s *Session) handleReadReceipt(ctx context.Context, ids []uint) {
	if len(ids) == 0 {
		return
	}
	changed, err := s.store.MarkRead(ctx, s.roomID, s.identity.UserID, ids)
	if err != nil {
		log.Printf("ERROR: Failed to mark messages read for %s in room %s: %v", s.identity.UserID, s.roomID, err)
		return
	}
	if len(changed) == 0 {
		return
	}
	_ = s.registry.Broadcast(ctx, s.roomID, models.Event{
		Type:       models.EventReadReceipt,
		Username:   s.identity.Username,
		MessageIDs: changed,
	}, s.id)
}
