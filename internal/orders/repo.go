package orders

import (
	"context"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) FindCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repository) CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("user_id = ? AND status <> ?", userID, enums.OrderStatusCancelled).
		Count(&count).Error
	return count, err
}

func (r *repository) FindAddress(ctx context.Context, addressID, userID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// CreateOrder inserts the order row, then its items with positions matching input order.
func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	conn := r.db.WithContext(ctx)
	if err := conn.Omit("Items").Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return conn.Create(&order.Items).Error
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return r.findOrder(r.db.WithContext(ctx), orderID)
}

func (r *repository) FindOrderForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return r.findOrder(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), orderID)
}

func (r *repository) findOrder(q *gorm.DB, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := q.
		Preload("Items", orderedItems).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrders(ctx context.Context, scope Scope, filters ListInput, params pagination.Params, sort pagination.Sort) ([]models.Order, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.Order{})
		if scope.UserID != nil {
			q = q.Where("user_id = ?", *scope.UserID)
		}
		if scope.StoreID != nil {
			q = q.Where("store_id = ?", *scope.StoreID)
		} else if filters.StoreID != nil {
			q = q.Where("store_id = ?", *filters.StoreID)
		}
		if filters.Status != nil {
			q = q.Where("status = ?", *filters.Status)
		}
		if filters.IsPaid != nil {
			q = q.Where("is_paid = ?", *filters.IsPaid)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []models.Order
	err := scoped().
		Preload("Items", orderedItems).
		Order(sort.Clause()).
		Limit(params.Limit).
		Offset(params.Offset()).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CancelStaleUnpaid cancels pending STRIPE orders that were never paid and were placed before cutoff.
func (r *repository) CancelStaleUnpaid(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND is_paid = ? AND payment_method = ? AND created_at < ?",
			enums.OrderStatusPending, false, enums.PaymentMethodStripe, cutoff).
		Updates(map[string]any{"status": enums.OrderStatusCancelled})
	return res.RowsAffected, res.Error
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
