package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"price":     "price",
	"name":      "name",
}

// Service exposes catalog reads and store-owner product management.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error)
	Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateInput) (*ProductDTO, error)
	Delete(ctx context.Context, storeID, productID uuid.UUID) error
	ToggleStock(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error)
	Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Categories(ctx context.Context) ([]string, error)
}

// CreateInput holds the validated payload to create a product.
type CreateInput struct {
	Name        string
	Description string
	MRP         decimal.Decimal
	Price       decimal.Decimal
	Images      []string
	Category    string
	InStock     *bool
}

// UpdateInput holds optional mutation values for a product.
type UpdateInput struct {
	Name        *string
	Description *string
	MRP         *decimal.Decimal
	Price       *decimal.Decimal
	Images      *[]string
	Category    *string
	InStock     *bool
}

type service struct {
	repo *Repository
}

// NewService constructs a product service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateInput) (*ProductDTO, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.Forbidden("You must have a store to create products")
	}
	if err := validateMoney(input.MRP, input.Price); err != nil {
		return nil, err
	}
	images := cleanImages(input.Images)
	if len(images) == 0 {
		return nil, pkgerrors.Validation("At least one image is required")
	}
	inStock := true
	if input.InStock != nil {
		inStock = *input.InStock
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		MRP:         input.MRP,
		Price:       input.Price,
		Images:      pq.StringArray(images),
		Category:    strings.TrimSpace(input.Category),
		InStock:     inStock,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := FromModel(*product)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, storeID, productID uuid.UUID, input UpdateInput) (*ProductDTO, error) {
	current, err := s.owned(ctx, storeID, productID, "update")
	if err != nil {
		return nil, err
	}

	mrp, price := current.MRP, current.Price
	if input.MRP != nil {
		mrp = *input.MRP
	}
	if input.Price != nil {
		price = *input.Price
	}
	if err := validateMoney(mrp, price); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.MRP != nil {
		updates["mrp"] = mrp
	}
	if input.Price != nil {
		updates["price"] = price
	}
	if input.Images != nil {
		images := cleanImages(*input.Images)
		if len(images) == 0 {
			return nil, pkgerrors.Validation("At least one image is required")
		}
		updates["images"] = pq.StringArray(images)
	}
	if input.Category != nil {
		updates["category"] = strings.TrimSpace(*input.Category)
	}
	if input.InStock != nil {
		updates["in_stock"] = *input.InStock
	}

	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, storeID, productID uuid.UUID) error {
	if _, err := s.owned(ctx, storeID, productID, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) ToggleStock(ctx context.Context, storeID, productID uuid.UUID) (*ProductDTO, error) {
	current, err := s.owned(ctx, storeID, productID, "update")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, productID, map[string]any{"in_stock": !current.InStock}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle stock")
	}
	return s.Get(ctx, productID)
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	dto := FromModel(*p)
	return &dto, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Filters.MinPrice != nil && input.Filters.MaxPrice != nil &&
		input.Filters.MinPrice.GreaterThan(*input.Filters.MaxPrice) {
		return nil, pkgerrors.Validation("minPrice cannot exceed maxPrice")
	}
	params := pagination.Normalize(input.Page.Page, input.Page.Limit)
	sort := pagination.ParseSort(input.SortBy, input.SortOrder, sortColumns, "createdAt")

	rows, total, err := s.repo.List(ctx, input.Filters, params, sort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return &ListResult{Products: out, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// owned loads a product and checks it belongs to storeID. verb names the attempted action.
func (s *service) owned(ctx context.Context, storeID, productID uuid.UUID, verb string) (*models.Product, error) {
	p, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if storeID == uuid.Nil || p.StoreID != storeID {
		return nil, pkgerrors.Forbidden(fmt.Sprintf("You are not authorized to %s this product", verb))
	}
	return p, nil
}

func validateMoney(mrp, price decimal.Decimal) error {
	if mrp.IsNegative() {
		return pkgerrors.Validation("MRP must be a positive number")
	}
	if price.IsNegative() {
		return pkgerrors.Validation("Price must be a positive number")
	}
	return nil
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
