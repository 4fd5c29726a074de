package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GuestUser groups orders placed without an account. AccountCreated flips to
// true exactly once, when the guest's orders are moved to a real account.
type GuestUser struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string    `gorm:"column:name;not null"`
	Email          string    `gorm:"column:email;not null;index"`
	Phone          string    `gorm:"column:phone;not null;index"`
	AccountCreated bool      `gorm:"column:account_created;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (GuestUser) TableName() string { return "guest_users" }

func (g *GuestUser) BeforeCreate(*gorm.DB) error {
	ensureID(&g.ID)
	return nil
}
