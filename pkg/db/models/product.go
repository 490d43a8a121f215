package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog listing owned by a store. Price is the authoritative unit price used at checkout.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	MRP         decimal.Decimal `gorm:"column:mrp;type:numeric(12,2);not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Images      pq.StringArray  `gorm:"column:images;type:text[];not null"`
	Category    string          `gorm:"column:category;not null;index"`
	InStock     bool            `gorm:"column:in_stock;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
