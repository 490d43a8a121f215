package stores

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/angelmondragon/gocart-backend/pkg/visibility"
	"github.com/google/uuid"
)

const logoPlaceholderURL = "https://ui-avatars.com/api/?name=%s&background=10b981&color=fff&size=400"

var sortColumns = map[string]string{
	"name":      "name",
	"createdAt": "created_at",
	"username":  "username",
}

// Service exposes store onboarding, directory and moderation operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*StoreDTO, error)
	Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	GetPublic(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error)
	GetPublicByUsername(ctx context.Context, username string) (*StoreDTO, error)
	GetMine(ctx context.Context, userID uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	SetStatus(ctx context.Context, storeID uuid.UUID, status enums.StoreStatus) (*StoreDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds the store service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateStoreInput) (*StoreDTO, error) {
	if _, err := s.repo.FindByUserID(ctx, userID); err == nil {
		return nil, pkgerrors.Conflict("You already have a store")
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing store")
	}

	username := strings.TrimSpace(input.Username)
	taken, err := s.repo.UsernameTaken(ctx, username, uuid.Nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
	}
	if taken {
		return nil, pkgerrors.Conflict("This username is already taken")
	}

	name := strings.TrimSpace(input.Name)
	logo := strings.TrimSpace(input.Logo)
	if logo == "" {
		logo = fmt.Sprintf(logoPlaceholderURL, url.QueryEscape(name))
	}

	store := &models.Store{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Username:    username,
		Address:     strings.TrimSpace(input.Address),
		Logo:        logo,
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Contact:     strings.TrimSpace(input.Contact),
		Status:      enums.StoreStatusPending,
		IsActive:    false,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict("You already have a store")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create store")
	}
	return FromModel(store), nil
}

func (s *service) Update(ctx context.Context, userID, storeID uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.UserID != userID {
		return nil, pkgerrors.Forbidden("You do not have permission to update this store")
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		taken, err := s.repo.UsernameTaken(ctx, username, storeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}
		if taken {
			return nil, pkgerrors.Conflict("This username is already taken")
		}
		updates["username"] = username
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Email != nil {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Contact != nil {
		updates["contact"] = strings.TrimSpace(*input.Contact)
	}
	if input.Address != nil {
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Logo != nil {
		updates["logo"] = strings.TrimSpace(*input.Logo)
	}

	if err := s.repo.Update(ctx, storeID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store")
	}
	updated, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) GetPublic(ctx context.Context, storeID uuid.UUID) (*StoreDTO, error) {
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return visible(store)
}

func (s *service) GetPublicByUsername(ctx context.Context, username string) (*StoreDTO, error) {
	store, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return visible(store)
}

func (s *service) GetMine(ctx context.Context, userID uuid.UUID) (*StoreDTO, error) {
	store, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "You do not have a store yet")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	params := pagination.Normalize(input.Page.Page, input.Page.Limit)
	sort := pagination.ParseSort(input.SortBy, input.SortOrder, sortColumns, "createdAt")

	rows, total, err := s.repo.ListPublic(ctx, input.Search, params, sort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list stores")
	}
	out := make([]StoreDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ListResult{Stores: out, Pagination: pagination.NewMeta(params, total)}, nil
}

// SetStatus moderates a store. Only approved stores are active.
func (s *service) SetStatus(ctx context.Context, storeID uuid.UUID, status enums.StoreStatus) (*StoreDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Validation("Status must be one of pending, approved, rejected")
	}
	err := s.repo.Update(ctx, storeID, map[string]any{
		"status":    status,
		"is_active": status == enums.StoreStatusApproved,
	})
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update store status")
	}
	store, err := s.load(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) load(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return store, nil
}

func visible(store *models.Store) (*StoreDTO, error) {
	if err := visibility.EnsureStorePublic(store); err != nil {
		return nil, err
	}
	return FromModel(store), nil
}
