package storage

import (
	"context"
	"errors"

	"penpal/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
	SetLearningLanguages(ctx context.Context, profile *models.UserProfile, languages []models.Language) error

	SaveLanguage(ctx context.Context, language *models.Language) error
	GetLanguageByID(ctx context.Context, id uint) (*models.Language, error)
	GetLanguageByCode(ctx context.Context, code string) (*models.Language, error)
	ListLanguages(ctx context.Context) ([]models.LanguageStat, error)

	FindReciprocalProfiles(ctx context.Context, excludeUserID string, targetLanguageID, userNativeID uint) ([]models.UserProfile, error)
	FindBroaderProfiles(ctx context.Context, excludeUserID string, targetLanguageID uint) ([]models.UserProfile, error)
	SendersWithMessages(ctx context.Context, userIDs []string) (map[string]bool, error)

	FindRoomByPairKey(ctx context.Context, pairKey string) (*models.ChatRoom, error)
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error)
	CloseRoom(ctx context.Context, roomID string) error
	ReopenRoom(ctx context.Context, roomID string) error
	ListActiveRoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error)
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)

	CreateMessage(ctx context.Context, roomID, senderID, content string) (*models.Message, error)
	MarkRead(ctx context.Context, roomID, userID string, messageIDs []uint) ([]uint, error)
	MarkRoomRead(ctx context.Context, roomID, userID string) (int64, error)
	ListMessages(ctx context.Context, roomID string) ([]models.Message, error)
	LastMessage(ctx context.Context, roomID string) (*models.Message, error)
	UnreadCount(ctx context.Context, roomID, userID string) (int64, error)

	PublishRoomEvent(ctx context.Context, channel string, payload []byte) error
	SubscribeRoomEvents(ctx context.Context, pattern string) *redis.PubSub
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor. rdb may be nil when the in-memory registry is used.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

var _ Storage = (*Service)(nil)

// notFound translates gorm's sentinel into ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
