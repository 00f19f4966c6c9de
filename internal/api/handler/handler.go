package handler

import (
	"context"

	"penpal/backend/internal/chathub"
	"penpal/backend/internal/matching"
	"penpal/backend/internal/rooms"
	"penpal/backend/internal/storage"
)

// Handler містить залежності HTTP- та WebSocket-обробників
type Handler struct {
	Store    storage.Storage
	Registry chathub.Registry
	Matcher  *matching.Matcher
	Rooms    *rooms.Provisioner

	// ctx живе довше за окремі запити; під ним працюють WebSocket-сесії.
	ctx context.Context
}

func NewHandler(ctx context.Context, s storage.Storage, registry chathub.Registry, matcher *matching.Matcher, provisioner *rooms.Provisioner) *Handler {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Handler{
		Store:    s,
		Registry: registry,
		Matcher:  matcher,
		Rooms:    provisioner,
		ctx:      ctx,
	}
}
