package orders

import (
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/angelmondragon/gocart-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Draft is a buyer's order request. It carries no prices.
type Draft struct {
	StoreID       uuid.UUID
	AddressID     uuid.UUID
	PaymentMethod enums.PaymentMethod
	Items         []DraftItem
	Coupon        *CouponInput
}

// DraftItem requests quantity units of a product.
type DraftItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CouponInput names the coupon the buyer wants applied.
type CouponInput struct {
	Code string
}

// Viewer identifies who is reading or mutating an order.
type Viewer struct {
	UserID  uuid.UUID
	StoreID uuid.UUID
}

// ListInput holds filters, paging and sort for order listings.
type ListInput struct {
	Status    *enums.OrderStatus
	StoreID   *uuid.UUID
	IsPaid    *bool
	Page      pagination.Params
	SortBy    string
	SortOrder string
}

// ListResult is one page of orders.
type ListResult struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Meta `json:"-"`
}

// CreateResult is returned from checkout. ClientSecret is set for STRIPE orders once a
// PaymentIntent has been opened.
type CreateResult struct {
	Order        OrderDTO `json:"order"`
	ClientSecret *string  `json:"clientSecret,omitempty"`
}

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	UserID          uuid.UUID             `json:"userId"`
	StoreID         uuid.UUID             `json:"storeId"`
	AddressID       uuid.UUID             `json:"addressId"`
	Total           decimal.Decimal       `json:"total"`
	Status          enums.OrderStatus     `json:"status"`
	IsPaid          bool                  `json:"isPaid"`
	PaymentMethod   enums.PaymentMethod   `json:"paymentMethod"`
	IsCouponUsed    bool                  `json:"isCouponUsed"`
	Coupon          *types.CouponSnapshot `json:"coupon,omitempty"`
	PaymentIntentID *string               `json:"paymentIntentId,omitempty"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	Items           []OrderItemDTO        `json:"orderItems"`
	CreatedAt       time.Time             `json:"createdAt"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// OrderItemDTO is a priced order line.
type OrderItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// FromModel maps an order row (with items preloaded) to its DTO.
func FromModel(o *models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
			LineTotal: item.LineTotal(),
		})
	}
	return OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		StoreID:         o.StoreID,
		AddressID:       o.AddressID,
		Total:           o.Total,
		Status:          o.Status,
		IsPaid:          o.IsPaid,
		PaymentMethod:   o.PaymentMethod,
		IsCouponUsed:    o.IsCouponUsed,
		Coupon:          o.Coupon,
		PaymentIntentID: o.PaymentIntentID,
		PaidAt:          o.PaidAt,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
