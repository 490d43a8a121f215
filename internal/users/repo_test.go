package users

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreateDefaults(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "hash",
		Image:        "https://example.com/ada.png",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleCustomer, found.Role)
	require.Empty(t, found.Cart)
	require.Nil(t, found.LastLoginAt)

	dto := FromModel(found)
	require.NotNil(t, dto.Cart)
	require.Equal(t, "Ada", dto.Name)
}

func TestRepositoryDuplicateEmail(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, CreateUserDTO{Name: "One", Email: "dup@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Name: "Two", Email: "dup@example.com", PasswordHash: "h"})
	require.True(t, db.IsUniqueViolation(err, ""))
}

func TestRepositoryUpdateLastLogin(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	user, err := repo.Create(ctx, CreateUserDTO{Name: "Bo", Email: "bo@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, at))

	found, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	require.True(t, at.Equal(found.LastLoginAt.UTC()))

	_, err = repo.FindByID(ctx, uuid.New())
	require.True(t, db.IsNotFound(err))
}
