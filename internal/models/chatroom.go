package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatRoom is a persistent conversation between exactly two users, scoped to one language.
type ChatRoom struct {
	// ID is the room identifier used in the WebSocket path (UUID).
	ID string `gorm:"primaryKey;size:36" json:"id"`
	// Name holds RoomName of the longest language name and two longest usernames.
	Name string `gorm:"size:355;not null" json:"name"`

	LanguageID uint      `gorm:"not null;index" json:"language_id"`
	Language   *Language `json:"language,omitempty"`

	Participants []User `gorm:"many2many:chat_room_participants;" json:"participants,omitempty"`

	// PairKey identifies the unordered pair of participants plus the language.
	// The unique index is what keeps concurrent provisioning from creating two rooms.
	PairKey string `gorm:"size:100;uniqueIndex;not null" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
}

func (r *ChatRoom) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}

// OtherParticipant returns the participant that is not userID, or nil if the
// participants were not loaded.
func (r *ChatRoom) OtherParticipant(userID string) *User {
	for i := range r.Participants {
		if r.Participants[i].ID != userID {
			return &r.Participants[i]
		}
	}
	return nil
}

// HasParticipant reports whether userID is among the loaded participants.
func (r *ChatRoom) HasParticipant(userID string) bool {
	for i := range r.Participants {
		if r.Participants[i].ID == userID {
			return true
		}
	}
	return false
}

// PairKey builds the order-independent key for two users and a language.
func PairKey(userA, userB string, languageID uint) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s:%s:%d", userA, userB, languageID)
}

// RoomName is the display name of a freshly provisioned room.
func RoomName(language, usernameA, usernameB string) string {
	return fmt.Sprintf("%s: %s & %s", language, usernameA, usernameB)
}
