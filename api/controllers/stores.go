package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/api/validators"
	product "github.com/angelmondragon/gocart-backend/internal/products"
	"github.com/angelmondragon/gocart-backend/internal/stores"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

type createStoreRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=100"`
	Username    string `json:"username" validate:"required,min=3,max=50,username"`
	Description string `json:"description" validate:"required,min=10,max=500"`
	Email       string `json:"email" validate:"required,email"`
	Contact     string `json:"contact" validate:"required,phone"`
	Address     string `json:"address" validate:"required"`
	Logo        string `json:"logo" validate:"omitempty,url"`
}

type updateStoreRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=3,max=100"`
	Username    *string `json:"username" validate:"omitempty,min=3,max=50,username"`
	Description *string `json:"description" validate:"omitempty,min=10,max=500"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Contact     *string `json:"contact" validate:"omitempty,phone"`
	Address     *string `json:"address" validate:"omitempty,min=1"`
	Logo        *string `json:"logo" validate:"omitempty,url"`
}

type storeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func storesUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
}

// StoreList serves the public directory of approved, active stores.
func StoreList(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query := r.URL.Query()
		result, err := svc.List(r.Context(), stores.ListInput{
			Search:    validators.SanitizeString(query.Get("search"), 200),
			Page:      page,
			SortBy:    query.Get("sortBy"),
			SortOrder: query.Get("sortOrder"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "", map[string]any{"stores": result.Stores}, result.Pagination)
	}
}

func StoreDetail(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId", "store")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetPublic(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"store": dto})
	}
}

func StoreByUsername(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		username := strings.TrimSpace(chi.URLParam(r, "username"))
		if username == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("username is required"))
			return
		}
		dto, err := svc.GetPublicByUsername(r.Context(), username)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"store": dto})
	}
}

// StoreProducts lists the catalog of one publicly visible store.
func StoreProducts(storeSvc stores.Service, productSvc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if storeSvc == nil || productSvc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId", "store")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := storeSvc.GetPublic(r.Context(), storeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := productSvc.List(r.Context(), product.ListInput{
			Filters: product.ListFilters{StoreID: &storeID},
			Page:    page,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "", map[string]any{"products": result.Products}, result.Pagination)
	}
}

func StoreMine(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.GetMine(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"store": dto})
	}
}

// StoreCreate opens a pending store for the caller.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), userID, stores.CreateStoreInput{
			Name:        body.Name,
			Username:    body.Username,
			Description: body.Description,
			Email:       body.Email,
			Contact:     body.Contact,
			Address:     body.Address,
			Logo:        body.Logo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Store created successfully. Waiting for admin approval.", map[string]any{"store": dto})
	}
}

func StoreUpdate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId", "store")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStoreRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), userID, storeID, stores.UpdateStoreInput{
			Name:        body.Name,
			Username:    body.Username,
			Description: body.Description,
			Email:       body.Email,
			Contact:     body.Contact,
			Address:     body.Address,
			Logo:        body.Logo,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Store updated successfully", map[string]any{"store": dto})
	}
}

// AdminStoreStatus moves a store through review; approval also activates it.
func AdminStoreStatus(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			storesUnavailable(w, r, logg)
			return
		}
		storeID, err := validators.ParseUUIDParam(r, "storeId", "store")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body storeStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.SetStatus(r.Context(), storeID, enums.StoreStatus(body.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithStoreID(r.Context(), storeID.String()), "store.status_changed")
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Store status updated", map[string]any{"store": dto})
	}
}
