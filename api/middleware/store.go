package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/visibility"
)

type storeLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

// RequireActiveStore resolves the caller's store and rejects callers without an active one.
// Store state is read per request so approvals apply without re-login.
func RequireActiveStore(stores storeLookup, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := RequireUserID(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			store, err := stores.FindByUserID(r.Context(), userID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store"))
				return
			}
			if err != nil {
				store = nil
			}
			if err := visibility.EnsureStoreOperational(store); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithStoreID(r.Context(), store.ID.String())
			if logg != nil {
				ctx = logg.WithStoreID(ctx, store.ID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
