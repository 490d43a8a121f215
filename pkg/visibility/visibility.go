package visibility

import (
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
)

const (
	NoStoreMessage       = "You need to create a store to access this resource"
	InactiveStoreMessage = "Your store is not active yet. Please wait for admin approval."
	UnavailableMessage   = "This store is not available"
)

// EnsureStorePublic gates shopper-facing store reads. Only approved, active stores are visible.
func EnsureStorePublic(store *models.Store) error {
	if store == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
	}
	if !store.IsPublic() {
		return pkgerrors.Forbidden(UnavailableMessage)
	}
	return nil
}

// EnsureStoreOperational gates seller actions on the caller's own store.
func EnsureStoreOperational(store *models.Store) error {
	if store == nil {
		return pkgerrors.Forbidden(NoStoreMessage)
	}
	if !store.IsActive {
		return pkgerrors.Forbidden(InactiveStoreMessage)
	}
	return nil
}
