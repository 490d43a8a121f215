package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/types"
)

// User represents a shopper account. A user owns at most one Store.
type User struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null"`
	Email        string          `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	Image        string          `gorm:"column:image;not null"`
	Role         enums.UserRole  `gorm:"column:role;type:text;not null"`
	Cart         types.CartItems `gorm:"column:cart;type:jsonb;not null"`
	LastLoginAt  *time.Time      `gorm:"column:last_login_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	if u.Role == "" {
		u.Role = enums.UserRoleCustomer
	}
	return nil
}
