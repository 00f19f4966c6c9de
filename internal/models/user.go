package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account on the platform. Every user owns exactly one UserProfile,
// which storage.CreateUser writes in the same transaction as the user row.
type User struct {
	ID        string       `gorm:"primaryKey;size:36" json:"id"`
	Username  string       `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string       `gorm:"size:254" json:"email,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	Profile   *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

// BeforeCreate assigns a UUID when the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
