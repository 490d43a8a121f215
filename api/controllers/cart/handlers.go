package cart

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/api/validators"
	internalcart "github.com/angelmondragon/gocart-backend/internal/cart"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

type itemMutation func(svc internalcart.Service, r *http.Request, userID, productID uuid.UUID) (*internalcart.View, error)

// CartFetch returns the caller's cart with its derived total.
func CartFetch(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cart": view})
	}
}

// CartAddItem adds one unit of the product in the path.
func CartAddItem(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return itemHandler(svc, logg, func(svc internalcart.Service, r *http.Request, userID, productID uuid.UUID) (*internalcart.View, error) {
		return svc.AddItem(r.Context(), userID, productID)
	})
}

// CartRemoveItem drops one unit, or the whole line with ?all=true.
func CartRemoveItem(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return itemHandler(svc, logg, func(svc internalcart.Service, r *http.Request, userID, productID uuid.UUID) (*internalcart.View, error) {
		all, err := validators.ParseQueryBool(r, "all")
		if err != nil {
			return nil, err
		}
		if all != nil && *all {
			return svc.DeleteItem(r.Context(), userID, productID)
		}
		return svc.RemoveItem(r.Context(), userID, productID)
	})
}

func CartClear(svc internalcart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := svc.Clear(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cart": view})
	}
}

func itemHandler(svc internalcart.Service, logg *logger.Logger, mutate itemMutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		view, err := mutate(svc, r, userID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"cart": view})
	}
}
