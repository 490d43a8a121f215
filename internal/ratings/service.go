package ratings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
)

// Service records and lists product reviews tied to purchases.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*RatingDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]RatingDTO, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (*ProductRatings, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ratings repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*RatingDTO, error) {
	review := strings.TrimSpace(input.Review)
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.Validation("Rating must be between 1 and 5")
	}
	if n := len([]rune(review)); n < 10 || n > 1000 {
		return nil, pkgerrors.Validation("Review must be between 10 and 1000 characters")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.Validation("Product ID is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Validation("Order ID is required")
	}

	owner, err := s.repo.FindOrderOwner(ctx, input.OrderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.NotFound("Order", input.OrderID.String())
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if owner != userID {
		return nil, pkgerrors.Forbidden("You can only rate products from your own orders")
	}

	ok, err := s.repo.OrderHasProduct(ctx, input.OrderID, input.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check order items")
	}
	if !ok {
		return nil, pkgerrors.Validation("This product is not part of the order")
	}

	rating := &models.Rating{
		UserID:    userID,
		ProductID: input.ProductID,
		OrderID:   input.OrderID,
		Rating:    input.Rating,
		Review:    review,
	}
	if err := s.repo.Create(ctx, rating); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Conflict("You have already rated this product for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create rating")
	}

	dto := fromRow(ratingRow{Rating: *rating})
	return &dto, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]RatingDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list ratings")
	}
	out := make([]RatingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out, nil
}

func (s *service) ListForProduct(ctx context.Context, productID uuid.UUID, page pagination.Params) (*ProductRatings, error) {
	page = pagination.Normalize(page.Page, page.Limit)
	rows, total, err := s.repo.ListByProduct(ctx, productID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list product ratings")
	}
	avg, _, err := s.repo.Summary(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize ratings")
	}

	out := make([]RatingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return &ProductRatings{
		Ratings:    out,
		Average:    math.Round(avg*10) / 10,
		Count:      total,
		Pagination: pagination.NewMeta(page, total),
	}, nil
}
