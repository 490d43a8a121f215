package ratings

import (
	"context"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ratingRow is a rating joined with its author's public profile.
type ratingRow struct {
	models.Rating
	UserName  string `gorm:"column:user_name"`
	UserImage string `gorm:"column:user_image"`
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, rating *models.Rating) error {
	return r.db.WithContext(ctx).Create(rating).Error
}

// FindOrderOwner returns the buyer of the order.
func (r *Repository) FindOrderOwner(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Select("id", "user_id").
		First(&order, "id = ?", orderID).Error; err != nil {
		return uuid.Nil, err
	}
	return order.UserID, nil
}

func (r *Repository) OrderHasProduct(ctx context.Context, orderID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND product_id = ?", orderID, productID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]ratingRow, error) {
	var rows []ratingRow
	err := r.withAuthor(ctx).
		Where("ratings.user_id = ?", userID).
		Order("ratings.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListByProduct returns a page of a product's ratings and the product's rating count.
func (r *Repository) ListByProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) ([]ratingRow, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Where("product_id = ?", productID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ratingRow
	err := r.withAuthor(ctx).
		Where("ratings.product_id = ?", productID).
		Order("ratings.created_at DESC").
		Offset(params.Offset()).
		Limit(pagination.Normalize(params.Page, params.Limit).Limit).
		Find(&rows).Error
	return rows, total, err
}

// Summary returns the average score and count for a product.
func (r *Repository) Summary(ctx context.Context, productID uuid.UUID) (float64, int64, error) {
	var out struct {
		Average float64
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Rating{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&out).Error
	return out.Average, out.Count, err
}

func (r *Repository) withAuthor(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("ratings").
		Select("ratings.*, users.name AS user_name, users.image AS user_image").
		Joins("LEFT JOIN users ON users.id = ratings.user_id")
}

