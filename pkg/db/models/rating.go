package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is a buyer review of a product purchased on a specific order.
type Rating struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_ratings_user_product_order"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_ratings_user_product_order"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_ratings_user_product_order"`
	Rating    int       `gorm:"column:rating;not null"`
	Review    string    `gorm:"column:review;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (r *Rating) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
