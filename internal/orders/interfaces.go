package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope restricts a listing to a buyer or to a store.
type Scope struct {
	UserID  *uuid.UUID
	StoreID *uuid.UUID
}

// Repository defines persistence operations for orders and the rows checkout reads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	FindAddress(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error)
	FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, scope Scope, filters ListInput, params pagination.Params, sort pagination.Sort) ([]models.Order, int64, error)
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	CancelStaleUnpaid(ctx context.Context, cutoff time.Time) (int64, error)
}
