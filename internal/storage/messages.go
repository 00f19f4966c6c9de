package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"penpal/backend/internal/models"

	"gorm.io/gorm"
)

// CreateMessage persists a message and bumps the room's updated_at so room
// listings order by latest activity. Returns ErrNotFound if the room is gone
// or closed.
func (s *Service) CreateMessage(ctx context.Context, roomID, senderID, content string) (*models.Message, error) {
	msg := &models.Message{
		RoomID:    roomID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ChatRoom{}).
			Where("id = ? AND is_active = ?", roomID, true).
			Update("updated_at", msg.Timestamp)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Omit("Sender").Create(msg).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("ERROR: Failed to save message for room %s: %v", roomID, err)
		}
		return nil, err
	}
	return msg, nil
}

// MarkRead flags the listed messages of the room as read, skipping the
// reader's own messages. Messages already read are left untouched, so the
// flag never goes back to false. Returns the ids that changed.
func (s *Service) MarkRead(ctx context.Context, roomID, userID string, messageIDs []uint) ([]uint, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var changed []uint
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Message{}).
			Where("room_id = ? AND id IN ? AND sender_id <> ? AND is_read = ?", roomID, messageIDs, userID, false).
			Order("id ASC").
			Pluck("id", &changed).Error; err != nil {
			return err
		}
		if len(changed) == 0 {
			return nil
		}
		return tx.Model(&models.Message{}).
			Where("id IN ?", changed).
			Update("is_read", true).Error
	})
	if err != nil {
		log.Printf("ERROR: Failed to mark messages read in room %s: %v", roomID, err)
		return nil, err
	}
	return changed, nil
}

// MarkRoomRead flags every unread message in the room not sent by userID.
func (s *Service) MarkRoomRead(ctx context.Context, roomID, userID string) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

// ListMessages returns the room history, oldest first.
func (s *Service) ListMessages(ctx context.Context, roomID string) ([]models.Message, error) {
	var msgs []models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("timestamp ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}
	return msgs, nil
}

// LastMessage returns the newest message of the room, or nil if it has none.
func (s *Service) LastMessage(ctx context.Context, roomID string) (*models.Message, error) {
	var msg models.Message
	err := s.DB.WithContext(ctx).
		Preload("Sender").
		Where("room_id = ?", roomID).
		Order("timestamp DESC, id DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// UnreadCount counts messages in the room that userID has not read yet.
func (s *Service) UnreadCount(ctx context.Context, roomID, userID string) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, userID, false).
		Count(&n).Error
	return n, err
}

// SendersWithMessages reports which of userIDs have sent at least one message anywhere.
func (s *Service) SendersWithMessages(ctx context.Context, userIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var senders []string
	err := s.DB.WithContext(ctx).Model(&models.Message{}).
		Where("sender_id IN ?", userIDs).
		Distinct().
		Pluck("sender_id", &senders).Error
	if err != nil {
		return nil, err
	}
	for _, id := range senders {
		out[id] = true
	}
	return out, nil
}
