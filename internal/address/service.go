package address

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/google/uuid"
)

const notFoundMessage = "Address not found"

// Service manages a user's shipping addresses.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*AddressDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input Input) (*AddressDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error) {
	address, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	dto := FromModel(address)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*AddressDTO, error) {
	in := input.normalized()
	if missing := in.missingField(); missing != "" {
		return nil, pkgerrors.Validation(missing + " is required")
	}

	address := &models.Address{
		UserID:  userID,
		Name:    in.Name,
		Email:   in.Email,
		Phone:   in.Phone,
		Street:  in.Street,
		City:    in.City,
		State:   in.State,
		Zip:     in.Zip,
		Country: in.Country,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	dto := FromModel(address)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input Input) (*AddressDTO, error) {
	in := input.normalized()
	if missing := in.missingField(); missing != "" {
		return nil, pkgerrors.Validation(missing + " is required")
	}

	address, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	address.Name = in.Name
	address.Email = in.Email
	address.Phone = in.Phone
	address.Street = in.Street
	address.City = in.City
	address.State = in.State
	address.Zip = in.Zip
	address.Country = in.Country

	if err := s.repo.Save(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
	}
	dto := FromModel(address)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}

// load hides other users' addresses behind the same 404 as missing ones.
func (s *service) load(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	address, err := s.repo.FindForUser(ctx, id, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	return address, nil
}
