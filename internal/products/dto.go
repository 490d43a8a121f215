package product

import (
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	StoreID     uuid.UUID       `json:"storeId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	Category    string          `json:"category"`
	InStock     bool            `json:"inStock"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ListFilters are the browse filters.
type ListFilters struct {
	Category    string
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	StoreID     *uuid.UUID
	InStockOnly bool
}

// ListInput carries filters, paging and sort selection.
type ListInput struct {
	Filters   ListFilters
	Page      pagination.Params
	SortBy    string
	SortOrder string
}

// ListResult is one page of products.
type ListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Meta `json:"-"`
}

// FromModel maps a product row to its DTO.
func FromModel(p models.Product) ProductDTO {
	images := []string(p.Images)
	if images == nil {
		images = []string{}
	}
	return ProductDTO{
		ID:          p.ID,
		StoreID:     p.StoreID,
		Name:        p.Name,
		Description: p.Description,
		MRP:         p.MRP,
		Price:       p.Price,
		Images:      images,
		Category:    p.Category,
		InStock:     p.InStock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
