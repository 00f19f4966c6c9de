// Package rooms creates and lists the two-person chat rooms.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sort"
	"sync"
	"time"

	"penpal/backend/internal/events"
	"penpal/backend/internal/models"
	"penpal/backend/internal/storage"
)

// ErrSelfChat is returned when a user tries to open a room with themselves.
var ErrSelfChat = errors.New("rooms: cannot start a chat with yourself")

// RoomStore is the storage the Provisioner needs.
type RoomStore interface {
	FindRoomByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error)
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	ReopenRoom(ctx context.Context, roomID string) error
	ListActiveRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
	LastMessage(ctx context.Context, roomID string) (*models.Message, error)
	UnreadCount(ctx context.Context, roomID, userID string) (int64, error)
}

const lockStripes = 64

type Provisioner struct {
	store     RoomStore
	publisher events.Publisher
	locks     [lockStripes]sync.Mutex
}

func NewProvisioner(store RoomStore, publisher events.Publisher) *Provisioner {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Provisioner{store: store, publisher: publisher}
}

func (p *Provisioner) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &p.locks[h.Sum32()%lockStripes]
}

// GetOrCreateRoom returns the room of userA and userB for language, creating
// it on first use. Calls for the same pair in either order and the same
// language always yield the same room, even when they race. A closed room is
// reopened rather than replaced.
func (p *Provisioner) GetOrCreateRoom(ctx context.Context, userA, userB *models.User, language *models.Language) (*models.ChatRoom, error) {
	if userA.ID == userB.ID {
		return nil, ErrSelfChat
	}
	key := models.PairKey(userA.ID, userB.ID, language.ID)

	mu := p.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	room, err := p.store.FindRoomByPairKey(ctx, key)
	if err == nil {
		return p.reopen(ctx, room)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("find room: %w", err)
	}

	room = &models.ChatRoom{
		Name:         models.RoomName(language.Name, userA.Username, userB.Username),
		LanguageID:   language.ID,
		Participants: []models.User{*userA, *userB},
		PairKey:      key,
		IsActive:     true,
	}
	if err := p.store.CreateRoom(ctx, room); err != nil {
		// another instance won the unique pair key
		existing, getErr := p.store.FindRoomByPairKey(ctx, key)
		if getErr == nil {
			return p.reopen(ctx, existing)
		}
		log.Printf("ERROR: Failed to create room for %s and %s: %v", userA.Username, userB.Username, err)
		return nil, fmt.Errorf("create room: %w", err)
	}
	room.Language = language
	log.Printf("INFO: Room %s created (%s).", room.ID, room.Name)

	err = p.publisher.Publish(ctx, events.Event{
		Type:       events.RoomCreated,
		RoomID:     room.ID,
		UserIDs:    []string{userA.ID, userB.ID},
		LanguageID: language.ID,
		At:         room.CreatedAt,
	})
	if err != nil {
		log.Printf("WARNING: Failed to publish room_created for %s: %v", room.ID, err)
	}
	return room, nil
}

func (p *Provisioner) reopen(ctx context.Context, room *models.ChatRoom) (*models.ChatRoom, error) {
	if room.IsActive {
		return room, nil
	}
	if err := p.store.ReopenRoom(ctx, room.ID); err != nil {
		return nil, fmt.Errorf("reopen room: %w", err)
	}
	room.IsActive = true
	log.Printf("INFO: Room %s reopened.", room.ID)
	return room, nil
}

// RoomSummary is a room as listed for one of its participants.
type RoomSummary struct {
	Room         models.ChatRoom `json:"room"`
	OtherUser    *models.User    `json:"other_user"`
	LastMessage  *models.Message `json:"last_message"`
	UnreadCount  int64           `json:"unread_count"`
	LastActivity time.Time       `json:"last_activity"`
}

// ListUserRooms returns the user's active rooms, most recent activity first.
func (p *Provisioner) ListUserRooms(ctx context.Context, userID string) ([]RoomSummary, error) {
	rooms, err := p.store.ListActiveRoomsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		last, err := p.store.LastMessage(ctx, room.ID)
		if err != nil {
			return nil, fmt.Errorf("last message of %s: %w", room.ID, err)
		}
		unread, err := p.store.UnreadCount(ctx, room.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("unread count of %s: %w", room.ID, err)
		}

		s := RoomSummary{
			Room:         room,
			OtherUser:    room.OtherParticipant(userID),
			LastMessage:  last,
			UnreadCount:  unread,
			LastActivity: room.CreatedAt,
		}
		if last != nil {
			s.LastActivity = last.Timestamp
		}
		out = append(out, s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out, nil
}
