package stores

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles store persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to store operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new store row.
func (r *Repository) Create(ctx context.Context, store *models.Store) error {
	if store == nil {
		return fmt.Errorf("store is required")
	}
	return r.db.WithContext(ctx).Create(store).Error
}

// FindByID loads a store by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByUserID returns the single store owned by userID.
func (r *Repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// FindByUsername looks a store up by its public handle.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

// UsernameTaken reports whether another store already uses username.
func (r *Repository) UsernameTaken(ctx context.Context, username string, except uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Store{}).Where("username = ?", username)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists the given columns only.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListPublic returns approved, active stores matching the search term.
func (r *Repository) ListPublic(ctx context.Context, search string, params pagination.Params, sort pagination.Sort) ([]models.Store, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Model(&models.Store{}).
			Where("is_active = ? AND status = ?", true, enums.StoreStatusApproved)
		if term := strings.TrimSpace(search); term != "" {
			like := "%" + strings.ToLower(term) + "%"
			q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(username) LIKE ?)", like, like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var stores []models.Store
	if err := scoped().Order(sort.Clause()).Limit(params.Limit).Offset(params.Offset()).Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}
