package ratings

import (
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
)

// CreateInput is the review payload.
type CreateInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	OrderID   uuid.UUID `json:"orderId" validate:"required"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Review    string    `json:"review" validate:"required,min=10,max=1000"`
}

// Reviewer is the public profile attached to a rating.
type Reviewer struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

type RatingDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ProductID uuid.UUID `json:"productId"`
	OrderID   uuid.UUID `json:"orderId"`
	Rating    int       `json:"rating"`
	Review    string    `json:"review"`
	User      *Reviewer `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProductRatings is a page of a product's reviews with its aggregate score.
type ProductRatings struct {
	Ratings    []RatingDTO     `json:"ratings"`
	Average    float64         `json:"averageRating"`
	Count      int64           `json:"totalRatings"`
	Pagination pagination.Meta `json:"-"`
}

func fromRow(row ratingRow) RatingDTO {
	dto := RatingDTO{
		ID:        row.ID,
		UserID:    row.UserID,
		ProductID: row.ProductID,
		OrderID:   row.OrderID,
		Rating:    row.Rating.Rating,
		Review:    row.Review,
		CreatedAt: row.CreatedAt,
	}
	if strings.TrimSpace(row.UserName) != "" {
		dto.User = &Reviewer{Name: row.UserName, Image: row.UserImage}
	}
	return dto
}
