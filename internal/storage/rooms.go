package storage

import (
	"context"
	"log"

	"penpal/backend/internal/models"

	"gorm.io/gorm"
)

func (s *Service) rooms(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Preload("Participants").Preload("Language")
}

func (s *Service) FindRoomByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.rooms(ctx).Where("pair_key = ?", pairKey).First(&room).Error; err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// CreateRoom inserts the room and its participant links in one transaction.
// The participants and language must already exist; they are not upserted.
// A duplicate pair key surfaces as an error (gorm.ErrDuplicatedKey when the
// dialect translates it).
func (s *Service) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return s.DB.WithContext(ctx).Omit("Participants.*", "Language").Create(room).Error
}

func (s *Service) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := s.rooms(ctx).Where("id = ?", roomID).First(&room).Error; err != nil {
		err = notFound(err)
		if err != ErrNotFound {
			log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		}
		return nil, err
	}
	return &room, nil
}

// CloseRoom deactivates a room; it disappears from room listings but keeps its history.
func (s *Service) CloseRoom(ctx context.Context, roomID string) error {
	res := s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReopenRoom marks a closed room active again.
func (s *Service) ReopenRoom(ctx context.Context, roomID string) error {
	res := s.DB.WithContext(ctx).Model(&models.ChatRoom{}).
		Where("id = ?", roomID).
		Update("is_active", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListActiveRoomsForUser returns the user's active rooms, most recently updated first.
func (s *Service) ListActiveRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	err := s.rooms(ctx).
		Joins("JOIN chat_room_participants crp ON crp.chat_room_id = chat_rooms.id").
		Where("crp.user_id = ? AND chat_rooms.is_active = ?", userID, true).
		Order("chat_rooms.updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		log.Printf("ERROR: Failed to list rooms for user %s: %v", userID, err)
		return nil, err
	}
	return rooms, nil
}

// IsParticipant reports whether userID is one of the participants of an
// active room. Missing and closed rooms have no participants.
func (s *Service) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).
		Table("chat_room_participants").
		Joins("JOIN chat_rooms ON chat_rooms.id = chat_room_participants.chat_room_id").
		Where("chat_room_participants.chat_room_id = ? AND chat_room_participants.user_id = ? AND chat_rooms.is_active = ?", roomID, userID, true).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
