package address

import (
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/google/uuid"
)

// AddressDTO is the API shape of a shipping address.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Street    string    `json:"street"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Country   string    `json:"country"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Input is the create/replace payload.
type Input struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,phone"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country" validate:"required"`
}

func (in Input) normalized() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:   strings.TrimSpace(in.Phone),
		Street:  strings.TrimSpace(in.Street),
		City:    strings.TrimSpace(in.City),
		State:   strings.TrimSpace(in.State),
		Zip:     strings.TrimSpace(in.Zip),
		Country: strings.TrimSpace(in.Country),
	}
}

func (in Input) missingField() string {
	fields := []struct {
		label string
		value string
	}{
		{"Name", in.Name},
		{"Email", in.Email},
		{"Phone number", in.Phone},
		{"Street address", in.Street},
		{"City", in.City},
		{"State", in.State},
		{"ZIP code", in.Zip},
		{"Country", in.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			return f.label
		}
	}
	return ""
}

func FromModel(a *models.Address) AddressDTO {
	return AddressDTO{
		ID:        a.ID,
		UserID:    a.UserID,
		Name:      a.Name,
		Email:     a.Email,
		Phone:     a.Phone,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		Zip:       a.Zip,
		Country:   a.Country,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
