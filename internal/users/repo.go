package users

import (
	"context"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists users. Lookups return gorm.ErrRecordNotFound on a miss.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repository to tx; a nil tx keeps the current handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) users() gorm.Interface[models.User] {
	return gorm.G[models.User](r.db)
}

func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.users().Where("email = ?", email).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.users().Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.users().Where("id = ?", id).Update(ctx, "last_login_at", at)
	return err
}

// UpdatePassword swaps the stored hash and reports a missing user as
// gorm.ErrRecordNotFound.
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	rows, err := r.users().Where("id = ?", id).Update(ctx, "password_hash", hash)
	if err != nil {
		return err
	}
	if rows == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
