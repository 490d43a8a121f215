package stores

import (
	"context"
	"strings"
	"testing"

	"github.com/angelmondragon/gocart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newStoreService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	return svc
}

func createInput(username string) CreateStoreInput {
	return CreateStoreInput{
		Name:        "Corner Shop",
		Username:    username,
		Description: "Everything for the neighbourhood",
		Email:       "Owner@Example.com",
		Contact:     "+1 (555) 010-2000",
		Address:     "1 Main St",
	}
}

func TestCreateStoreStartsPending(t *testing.T) {
	svc := newStoreService(t)
	userID := uuid.New()

	store, err := svc.Create(context.Background(), userID, createInput("corner_shop"))
	require.NoError(t, err)
	require.Equal(t, string(enums.StoreStatusPending), store.Status)
	require.False(t, store.IsActive)
	require.Equal(t, "owner@example.com", store.Email)
	require.True(t, strings.HasPrefix(store.Logo, "https://ui-avatars.com/api/?name=Corner+Shop"))

	_, err = svc.GetPublic(context.Background(), store.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	require.Equal(t, "This store is not available", pkgerrors.As(err).Message())
}

func TestCreateStoreConflicts(t *testing.T) {
	svc := newStoreService(t)
	userID := uuid.New()
	_, err := svc.Create(context.Background(), userID, createInput("one"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), userID, createInput("two"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "You already have a store", pkgerrors.As(err).Message())

	_, err = svc.Create(context.Background(), uuid.New(), createInput("one"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, "This username is already taken", pkgerrors.As(err).Message())
}

func TestSetStatusDrivesVisibility(t *testing.T) {
	svc := newStoreService(t)
	store, err := svc.Create(context.Background(), uuid.New(), createInput("approved_shop"))
	require.NoError(t, err)

	updated, err := svc.SetStatus(context.Background(), store.ID, enums.StoreStatusApproved)
	require.NoError(t, err)
	require.True(t, updated.IsActive)

	public, err := svc.GetPublicByUsername(context.Background(), "approved_shop")
	require.NoError(t, err)
	require.Equal(t, store.ID, public.ID)

	list, err := svc.List(context.Background(), ListInput{Page: pagination.Params{Page: 1, Limit: 10}})
	require.NoError(t, err)
	require.Len(t, list.Stores, 1)

	updated, err = svc.SetStatus(context.Background(), store.ID, enums.StoreStatusRejected)
	require.NoError(t, err)
	require.False(t, updated.IsActive)

	list, err = svc.List(context.Background(), ListInput{})
	require.NoError(t, err)
	require.Empty(t, list.Stores)
}

func TestSetStatusValidation(t *testing.T) {
	svc := newStoreService(t)
	_, err := svc.SetStatus(context.Background(), uuid.New(), enums.StoreStatus("bogus"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.SetStatus(context.Background(), uuid.New(), enums.StoreStatusApproved)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateRequiresOwner(t *testing.T) {
	svc := newStoreService(t)
	owner := uuid.New()
	store, err := svc.Create(context.Background(), owner, createInput("mine"))
	require.NoError(t, err)

	name := "Renamed"
	_, err = svc.Update(context.Background(), uuid.New(), store.ID, UpdateStoreInput{Name: &name})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.Update(context.Background(), owner, store.ID, UpdateStoreInput{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
}

func TestGetMineWithoutStore(t *testing.T) {
	svc := newStoreService(t)
	_, err := svc.GetMine(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.Equal(t, "You do not have a store yet", pkgerrors.As(err).Message())
}

func TestListSearchesUsername(t *testing.T) {
	svc := newStoreService(t)
	for _, handle := range []string{"books_and_more", "garden_hub"} {
		in := createInput(handle)
		store, err := svc.Create(context.Background(), uuid.New(), in)
		require.NoError(t, err)
		_, err = svc.SetStatus(context.Background(), store.ID, enums.StoreStatusApproved)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), ListInput{Search: "GARDEN", SortBy: "username", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, list.Stores, 1)
	require.Equal(t, "garden_hub", list.Stores[0].Username)
	require.EqualValues(t, 1, list.Pagination.Total)
}
