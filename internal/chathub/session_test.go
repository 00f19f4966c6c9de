package chathub_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"penpal/backend/internal/chathub"
	"penpal/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const roomID = "room-1"

var (
	alice = models.Identity{Authenticated: true, UserID: "u-alice", Username: "alice"}
	bob   = models.Identity{Authenticated: true, UserID: "u-bob", Username: "bob"}
)

type harness struct {
	store *MockStore
	reg   *chathub.MemoryRegistry
	peer  *recordingMember
}

func newHarness() *harness {
	h := &harness{
		store: new(MockStore),
		reg:   chathub.NewMemoryRegistry(),
		peer:  newRecordingMember("peer"),
	}
	h.reg.Join(roomID, h.peer)
	return h
}

func (h *harness) joined(t *testing.T, id models.Identity) *chathub.Session {
	t.Helper()
	h.store.On("IsParticipant", mock.Anything, roomID, id.UserID).Return(true, nil).Once()
	s := chathub.NewSession(roomID, id, h.reg, h.store)
	require.NoError(t, s.Open(context.Background()))
	require.Equal(t, chathub.StateJoined, s.State())
	drain(s)
	h.peer.events = nil
	return s
}

func drain(s *chathub.Session) []models.Event {
	var out []models.Event
	for {
		select {
		case e, ok := <-s.Outbound():
			if !ok {
				return out
			}
			out = append(out, e)
		default:
			return out
		}
	}
}

func TestSession_OpenJoinsAndAnnounces(t *testing.T) {
	h := newHarness()
	h.store.On("IsParticipant", mock.Anything, roomID, alice.UserID).Return(true, nil)
	s := chathub.NewSession(roomID, alice, h.reg, h.store)
	assert.Equal(t, chathub.StateConnecting, s.State())

	require.NoError(t, s.Open(context.Background()))

	assert.Equal(t, chathub.StateJoined, s.State())
	assert.Equal(t, 2, h.reg.Len(roomID))
	self := drain(s)
	require.Len(t, self, 1, "user_joined goes to the joiner too")
	assert.Equal(t, models.EventUserJoined, self[0].Type)
	assert.Equal(t, "alice", self[0].Username)
	assert.Equal(t, []models.EventType{models.EventUserJoined}, h.peer.Types())

	assert.ErrorIs(t, s.Open(context.Background()), chathub.ErrSessionState)
}

func TestSession_RejectsUnauthenticated(t *testing.T) {
	h := newHarness()
	s := chathub.NewSession(roomID, models.Identity{}, h.reg, h.store)

	err := s.Open(context.Background())

	assert.ErrorIs(t, err, chathub.ErrUnauthenticated)
	assert.Equal(t, chathub.StateRejected, s.State())
	assert.Equal(t, 1, h.reg.Len(roomID))
	h.store.AssertNotCalled(t, "IsParticipant", mock.Anything, mock.Anything, mock.Anything)
	_, open := <-s.Outbound()
	assert.False(t, open)
}

func TestSession_RejectsNonParticipant(t *testing.T) {
	h := newHarness()
	h.store.On("IsParticipant", mock.Anything, roomID, alice.UserID).Return(false, nil)
	s := chathub.NewSession(roomID, alice, h.reg, h.store)

	assert.ErrorIs(t, s.Open(context.Background()), chathub.ErrNotParticipant)
	assert.Equal(t, chathub.StateRejected, s.State())
	assert.Empty(t, h.peer.Events())

	s.Close()
	assert.Equal(t, chathub.StateRejected, s.State())
	assert.Empty(t, h.peer.Events(), "a rejected session never announces leaving")
}

func TestSession_RejectsOnStoreError(t *testing.T) {
	h := newHarness()
	h.store.On("IsParticipant", mock.Anything, roomID, alice.UserID).Return(false, errors.New("db down"))
	s := chathub.NewSession(roomID, alice, h.reg, h.store)

	assert.ErrorIs(t, s.Open(context.Background()), chathub.ErrNotParticipant)
	assert.Equal(t, chathub.StateRejected, s.State())
}

func TestSession_ChatMessageBroadcastToAll(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	h.store.On("CreateMessage", mock.Anything, roomID, alice.UserID, "hola").
		Return(&models.Message{ID: 7, RoomID: roomID, SenderID: alice.UserID, Content: "hola", Timestamp: ts}, nil)

	s.HandleFrame(context.Background(), []byte(`{"type":"chat_message","message":"  hola \n"}`))

	self := drain(s)
	require.Len(t, self, 1)
	assert.Equal(t, models.EventChatMessage, self[0].Type)
	assert.Equal(t, "hola", self[0].Message)
	assert.EqualValues(t, 7, self[0].MessageID)
	require.NotNil(t, self[0].Timestamp)
	assert.True(t, ts.Equal(*self[0].Timestamp))
	assert.Equal(t, self, h.peer.Events())
}

func TestSession_TypeDefaultsToChatMessage(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)
	h.store.On("CreateMessage", mock.Anything, roomID, alice.UserID, "hi").
		Return(&models.Message{ID: 1, Content: "hi", Timestamp: time.Now()}, nil)

	s.HandleFrame(context.Background(), []byte(`{"message":"hi"}`))

	h.store.AssertCalled(t, "CreateMessage", mock.Anything, roomID, alice.UserID, "hi")
	assert.Equal(t, []models.EventType{models.EventChatMessage}, h.peer.Types())
}

func TestSession_MessageLengthBounds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		saved   bool
	}{
		{"whitespace only", " \t\n  ", false},
		{"empty", "", false},
		{"2500 characters", strings.Repeat("a", 2500), true},
		{"2501 characters", strings.Repeat("a", 2501), false},
		{"2500 multibyte characters", strings.Repeat("ж", 2500), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			s := h.joined(t, alice)
			h.store.On("CreateMessage", mock.Anything, roomID, alice.UserID, mock.AnythingOfType("string")).
				Return(&models.Message{ID: 1, Content: tt.content, Timestamp: time.Now()}, nil).Maybe()

			frame := `{"type":"chat_message","message":"` + tt.content + `"}`
			if strings.ContainsAny(tt.content, "\t\n") {
				frame = `{"type":"chat_message","message":" \t\n  "}`
			}
			s.HandleFrame(context.Background(), []byte(frame))

			if tt.saved {
				h.store.AssertNumberOfCalls(t, "CreateMessage", 1)
				assert.Len(t, h.peer.Events(), 1)
			} else {
				h.store.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				assert.Empty(t, h.peer.Events())
			}
		})
	}
}

func TestSession_PersistenceFailureBroadcastsNothing(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)
	h.store.On("CreateMessage", mock.Anything, roomID, alice.UserID, "hola").Return(nil, errors.New("disk full"))

	s.HandleFrame(context.Background(), []byte(`{"message":"hola"}`))

	assert.Empty(t, drain(s))
	assert.Empty(t, h.peer.Events())
	assert.Equal(t, chathub.StateJoined, s.State())
}

func TestSession_TypingNotEchoedToTypist(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)

	s.HandleFrame(context.Background(), []byte(`{"type":"typing"}`))
	s.HandleFrame(context.Background(), []byte(`{"type":"typing","isTyping":false}`))

	assert.Empty(t, drain(s))
	events := h.peer.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "alice", events[0].Username)
	require.NotNil(t, events[0].IsTyping)
	assert.True(t, *events[0].IsTyping)
	require.NotNil(t, events[1].IsTyping)
	assert.False(t, *events[1].IsTyping)
}

func TestSession_ReadReceipt(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)
	h.store.On("MarkRead", mock.Anything, roomID, alice.UserID, []uint{1, 2, 3}).Return([]uint{2, 3}, nil).Once()
	h.store.On("MarkRead", mock.Anything, roomID, alice.UserID, []uint{1, 2, 3}).Return([]uint(nil), nil).Once()

	s.HandleFrame(context.Background(), []byte(`{"type":"read_receipt","messageIds":[1,2,3]}`))
	s.HandleFrame(context.Background(), []byte(`{"type":"read_receipt","messageIds":[1,2,3]}`))
	s.HandleFrame(context.Background(), []byte(`{"type":"read_receipt","messageIds":[]}`))

	h.store.AssertNumberOfCalls(t, "MarkRead", 2)
	assert.Empty(t, drain(s), "the reader does not get its own receipt")
	events := h.peer.Events()
	require.Len(t, events, 1, "only a receipt that changed rows is broadcast")
	assert.Equal(t, models.EventReadReceipt, events[0].Type)
	assert.Equal(t, []uint{2, 3}, events[0].MessageIDs, "only ids that flipped to read are announced")
}

func TestSession_IgnoresMalformedAndUnknownFrames(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)

	s.HandleFrame(context.Background(), []byte(`{not json`))
	s.HandleFrame(context.Background(), []byte(`{"type":"video_call","message":"ring"}`))

	h.store.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, h.peer.Events())
	assert.Equal(t, chathub.StateJoined, s.State())
}

func TestSession_CloseLeavesAndAnnounces(t *testing.T) {
	h := newHarness()
	s := h.joined(t, alice)

	s.Close()
	s.Close()

	assert.Equal(t, chathub.StateClosed, s.State())
	assert.Equal(t, 1, h.reg.Len(roomID))
	events := h.peer.Events()
	require.Len(t, events, 1, "close is idempotent")
	assert.Equal(t, models.EventUserLeft, events[0].Type)
	assert.Equal(t, "alice", events[0].Username)

	assert.False(t, s.Deliver(models.Event{Type: models.EventChatMessage}))
	s.HandleFrame(context.Background(), []byte(`{"message":"late"}`))
	h.store.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_TwoParticipants(t *testing.T) {
	h := newHarness()
	a := h.joined(t, alice)
	b := h.joined(t, bob)
	drain(a)

	b.HandleFrame(context.Background(), []byte(`{"type":"typing"}`))
	b.Close()

	got := drain(a)
	require.Len(t, got, 2)
	assert.Equal(t, models.EventTyping, got[0].Type)
	assert.Equal(t, "bob", got[0].Username)
	assert.Equal(t, models.EventUserLeft, got[1].Type)
}
