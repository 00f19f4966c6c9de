package chathub_test

import (
	"context"
	"sync"

	"penpal/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStore is a testify mock of chathub.MessageStore.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateMessage(ctx context.Context, roomID, senderID, content string) (*models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *MockStore) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) MarkRead(ctx context.Context, roomID, userID string, messageIDs []uint) ([]uint, error) {
	args := m.Called(ctx, roomID, userID, messageIDs)
	ids, _ := args.Get(0).([]uint)
	return ids, args.Error(1)
}

// recordingMember collects delivered events; with capacity > 0 it drops
// events once that many are held, like a full send buffer.
type recordingMember struct {
	id       string
	capacity int

	mu     sync.Mutex
	events []models.Event
}

func newRecordingMember(id string) *recordingMember {
	return &recordingMember{id: id}
}

func (m *recordingMember) MemberID() string { return m.id }

func (m *recordingMember) Deliver(event models.Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.capacity > 0 && len(m.events) >= m.capacity {
		return false
	}
	m.events = append(m.events, event)
	return true
}

func (m *recordingMember) Events() []models.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Event(nil), m.events...)
}

func (m *recordingMember) Types() []models.EventType {
	var types []models.EventType
	for _, e := range m.Events() {
		types = append(types, e.Type)
	}
	return types
}
