package cart

import (
	"context"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists carts in the users.cart column.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Load returns the stored cart for the user.
func (r *Repository) Load(ctx context.Context, userID uuid.UUID) (types.CartItems, error) {
	return r.load(r.db.WithContext(ctx), userID)
}

// LoadForUpdate reads the cart while holding a row lock for the rest of the transaction.
func (r *Repository) LoadForUpdate(ctx context.Context, userID uuid.UUID) (types.CartItems, error) {
	return r.load(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *Repository) load(q *gorm.DB, userID uuid.UUID) (types.CartItems, error) {
	var user models.User
	if err := q.Select("id", "cart").Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	if user.Cart == nil {
		return types.CartItems{}, nil
	}
	return user.Cart, nil
}

// Save overwrites the stored cart.
func (r *Repository) Save(ctx context.Context, userID uuid.UUID, items types.CartItems) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("cart", items)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
