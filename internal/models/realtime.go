package models

import "time"

// FrameType discriminates inbound WebSocket frames.
type FrameType string

const (
	FrameChatMessage FrameType = "chat_message"
	FrameTyping      FrameType = "typing"
	FrameReadReceipt FrameType = "read_receipt"
)

// InboundFrame is what a client sends over the chat socket.
type InboundFrame struct {
	Type       FrameType `json:"type"`
	Message    string    `json:"message"`
	IsTyping   *bool     `json:"isTyping"`
	MessageIDs []uint    `json:"messageIds"`
}

// EventType discriminates outbound events broadcast to a room group.
type EventType string

const (
	EventChatMessage EventType = "chat_message"
	EventTyping      EventType = "typing"
	EventUserJoined  EventType = "user_joined"
	EventUserLeft    EventType = "user_left"
	EventReadReceipt EventType = "read_receipt"
)

// Event is an outbound frame. Only the fields relevant to Type are set.
type Event struct {
	Type       EventType  `json:"type"`
	Username   string     `json:"username"`
	Message    string     `json:"message,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	MessageID  uint       `json:"messageId,omitempty"`
	IsTyping   *bool      `json:"isTyping,omitempty"`
	MessageIDs []uint     `json:"messageIds,omitempty"`
}

// Identity is the caller as established by the identity provider.
type Identity struct {
	Authenticated bool
	UserID        string
	Username      string
}
