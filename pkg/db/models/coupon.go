package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coupon is a percentage discount keyed by its public code.
type Coupon struct {
	Code        string          `gorm:"column:code;primaryKey"`
	Description string          `gorm:"column:description;not null"`
	Discount    decimal.Decimal `gorm:"column:discount;type:numeric(5,2);not null"`
	ForNewUser  bool            `gorm:"column:for_new_user;not null"`
	IsPublic    bool            `gorm:"column:is_public;not null"`
	ExpiresAt   time.Time       `gorm:"column:expires_at;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
