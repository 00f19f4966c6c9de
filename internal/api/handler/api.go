package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"penpal/backend/internal/api/middleware"
	"penpal/backend/internal/rooms"
	"penpal/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListLanguages returns every language with the number of users learning it.
func (h *Handler) ListLanguages(c *gin.Context) {
	stats, err := h.Store.ListLanguages(c.Request.Context())
	if err != nil {
		log.Printf("ERROR: Failed to list languages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list languages"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ListPartners returns the best-ranked partners of the caller for a language.
func (h *Handler) ListPartners(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid language id"})
		return
	}
	language, err := h.Store.GetLanguageByID(ctx, uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Language not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load language"})
		return
	}

	caller := middleware.CurrentIdentity(c)
	ranked, err := h.Matcher.RankPartners(ctx, caller.UserID, language.ID)
	if err != nil {
		log.Printf("ERROR: Failed to rank partners for %s: %v", caller.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find partners"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": language, "partners": ranked})
}

type startChatRequest struct {
	PartnerID  string `json:"partner_id" binding:"required"`
	LanguageID uint   `json:"language_id" binding:"required"`
}

// StartChat opens (or reopens) the caller's room with a partner.
func (h *Handler) StartChat(c *gin.Context) {
	ctx := c.Request.Context()
	var req startChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "partner_id and language_id are required"})
		return
	}

	caller := middleware.CurrentIdentity(c)
	me, err := h.Store.GetUserByID(ctx, caller.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return
	}
	partner, err := h.Store.GetUserByID(ctx, req.PartnerID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Partner not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load partner"})
		return
	}
	language, err := h.Store.GetLanguageByID(ctx, req.LanguageID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Language not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load language"})
		return
	}

	room, err := h.Rooms.GetOrCreateRoom(ctx, me, partner, language)
	if errors.Is(err, rooms.ErrSelfChat) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot start a chat with yourself"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create chat room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handler) ListChats(c *gin.Context) {
	caller := middleware.CurrentIdentity(c)
	list, err := h.Rooms.ListUserRooms(c.Request.Context(), caller.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for %s: %v", caller.UserID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list chats"})
		return
	}
	c.JSON(http.StatusOK, list)
}

// ChatHistory returns the room's messages to a participant and marks the
// partner's messages as read.
func (h *Handler) ChatHistory(c *gin.Context) {
	ctx := c.Request.Context()
	roomID := c.Param("room_id")
	caller := middleware.CurrentIdentity(c)

	room, err := h.Store.GetRoomByID(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chat room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load chat room"})
		return
	}
	// Closed rooms keep their history, so membership is checked on the room itself.
	if !room.HasParticipant(caller.UserID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not a participant of this chat"})
		return
	}

	if _, err := h.Store.MarkRoomRead(ctx, roomID, caller.UserID); err != nil {
		log.Printf("WARNING: Failed to mark room %s read for %s: %v", roomID, caller.UserID, err)
	}
	msgs, err := h.Store.ListMessages(ctx, roomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room":       room,
		"other_user": room.OtherParticipant(caller.UserID),
		"messages":   msgs,
	})
}
