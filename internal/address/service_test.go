package address

import (
	"context"
	"testing"

	"github.com/angelmondragon/gocart-backend/pkg/db/dbtest"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newAddressService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc
}

func sampleInput() Input {
	return Input{
		Name:    " Ada Lovelace ",
		Email:   "Ada@Example.com",
		Phone:   "+44 20 7946 0000",
		Street:  "12 St James's Square",
		City:    "London",
		State:   "London",
		Zip:     "SW1Y 4JH",
		Country: "UK",
	}
}

func TestCreateAndListAddresses(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, sampleInput())
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", created.Name)
	require.Equal(t, "ada@example.com", created.Email)

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 1)

	others, err := svc.List(ctx, uuid.New())
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestCreateRequiresEveryField(t *testing.T) {
	svc := newAddressService(t)
	in := sampleInput()
	in.Zip = "  "

	_, err := svc.Create(context.Background(), uuid.New(), in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, "ZIP code is required", pkgerrors.As(err).Message())
}

func TestAddressesAreOwnerScoped(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()

	created, err := svc.Create(ctx, owner, sampleInput())
	require.NoError(t, err)

	_, err = svc.Get(ctx, stranger, created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Equal(t, "Address not found", pkgerrors.As(err).Message())

	_, err = svc.Update(ctx, stranger, created.ID, sampleInput())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, stranger, created.ID), pkgerrors.CodeNotFound))

	got, err := svc.Get(ctx, owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
}

func TestUpdateAndDeleteAddress(t *testing.T) {
	svc := newAddressService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, sampleInput())
	require.NoError(t, err)

	in := sampleInput()
	in.City = "Cambridge"
	updated, err := svc.Update(ctx, owner, created.ID, in)
	require.NoError(t, err)
	require.Equal(t, "Cambridge", updated.City)

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	_, err = svc.Get(ctx, owner, created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
