package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gocart-backend/pkg/enums"
)

// Store is a vendor storefront. It only becomes visible once approved and active.
type Store struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Name        string            `gorm:"column:name;not null"`
	Description string            `gorm:"column:description;not null"`
	Username    string            `gorm:"column:username;not null;uniqueIndex"`
	Address     string            `gorm:"column:address;not null"`
	Logo        string            `gorm:"column:logo;not null"`
	Email       string            `gorm:"column:email;not null"`
	Contact     string            `gorm:"column:contact;not null"`
	Status      enums.StoreStatus `gorm:"column:status;type:text;not null"`
	IsActive    bool              `gorm:"column:is_active;not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Store) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// IsPublic reports whether shoppers may browse the store.
func (s *Store) IsPublic() bool {
	return s.IsActive && s.Status == enums.StoreStatusApproved
}
