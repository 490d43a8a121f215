package stores

import (
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
)

// StoreDTO is the store payload returned to clients.
type StoreDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Username    string    `json:"username"`
	Address     string    `json:"address"`
	Logo        string    `json:"logo"`
	Email       string    `json:"email"`
	Contact     string    `json:"contact"`
	Status      string    `json:"status"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CreateStoreInput is the validated create payload.
type CreateStoreInput struct {
	Name        string
	Username    string
	Description string
	Email       string
	Contact     string
	Address     string
	Logo        string
}

// UpdateStoreInput holds optional store mutations.
type UpdateStoreInput struct {
	Name        *string
	Username    *string
	Description *string
	Email       *string
	Contact     *string
	Address     *string
	Logo        *string
}

// ListInput carries the public directory query.
type ListInput struct {
	Search    string
	Page      pagination.Params
	SortBy    string
	SortOrder string
}

// ListResult is one page of stores.
type ListResult struct {
	Stores     []StoreDTO      `json:"stores"`
	Pagination pagination.Meta `json:"-"`
}

// FromModel maps a store row to the DTO.
func FromModel(m *models.Store) *StoreDTO {
	if m == nil {
		return nil
	}
	return &StoreDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Username:    m.Username,
		Address:     m.Address,
		Logo:        m.Logo,
		Email:       m.Email,
		Contact:     m.Contact,
		Status:      string(m.Status),
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
