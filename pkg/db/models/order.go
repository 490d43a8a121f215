package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/types"
)

// Order is the durable purchase record. Total is computed server side once, at creation.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	StoreID         uuid.UUID             `gorm:"column:store_id;type:uuid;not null;index"`
	AddressID       uuid.UUID             `gorm:"column:address_id;type:uuid;not null"`
	Total           decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null"`
	IsPaid          bool                  `gorm:"column:is_paid;not null"`
	PaymentMethod   enums.PaymentMethod   `gorm:"column:payment_method;type:text;not null"`
	IsCouponUsed    bool                  `gorm:"column:is_coupon_used;not null"`
	Coupon          *types.CouponSnapshot `gorm:"column:coupon;type:jsonb"`
	PaymentIntentID *string               `gorm:"column:payment_intent_id"`
	PaidAt          *time.Time            `gorm:"column:paid_at"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
