// Package events publishes room activity for consumers outside the chat service.
package events

import (
	"context"
	"time"
)

type Type string

const (
	RoomCreated Type = "room_created"
)

// Event is one activity record.
type Event struct {
	Type       Type      `json:"type"`
	RoomID     string    `json:"room_id"`
	UserIDs    []string  `json:"user_ids"`
	LanguageID uint      `json:"language_id"`
	At         time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
