package models

import "time"

// Message is a persisted chat message. It is created once and afterwards only
// IsRead may change, and only from false to true.
type Message struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	RoomID string `gorm:"size:36;not null;index:idx_room_msg" json:"room_id"`
	// SenderID is one of the room's two participants.
	SenderID string `gorm:"size:36;not null;index:idx_room_msg;index" json:"sender_id"`
	Sender   *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`
	// Timestamp is the creation time and never changes.
	Timestamp time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	IsRead    bool      `gorm:"not null;index" json:"is_read"`
}
