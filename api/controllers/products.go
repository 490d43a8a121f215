package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/api/validators"
	product "github.com/angelmondragon/gocart-backend/internal/products"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

type createProductRequest struct {
	Name        string          `json:"name" validate:"required,min=3,max=200"`
	Description string          `json:"description" validate:"required,min=10,max=2000"`
	MRP         decimal.Decimal `json:"mrp"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Images      []string        `json:"images" validate:"required,min=1,dive,required"`
	InStock     *bool           `json:"inStock"`
}

type updateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=3,max=200"`
	Description *string          `json:"description" validate:"omitempty,min=10,max=2000"`
	MRP         *decimal.Decimal `json:"mrp"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category" validate:"omitempty,min=1"`
	Images      *[]string        `json:"images" validate:"omitempty,min=1,dive,required"`
	InStock     *bool            `json:"inStock"`
}

func productsUnavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
}

// ProductList serves the public catalog with filters and pagination.
func ProductList(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}

		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := productFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.List(r.Context(), product.ListInput{
			Filters:   filters,
			Page:      page,
			SortBy:    query.Get("sortBy"),
			SortOrder: query.Get("sortOrder"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "", map[string]any{"products": result.Products}, result.Pagination)
	}
}

func productFilters(r *http.Request) (product.ListFilters, error) {
	query := r.URL.Query()
	filters := product.ListFilters{
		Category: validators.SanitizeString(query.Get("category"), 100),
		Search:   validators.SanitizeString(query.Get("search"), 200),
	}

	var err error
	if filters.MinPrice, err = validators.ParseQueryDecimal(r, "minPrice"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = validators.ParseQueryDecimal(r, "maxPrice"); err != nil {
		return filters, err
	}
	if filters.StoreID, err = validators.ParseQueryUUID(r, "storeId"); err != nil {
		return filters, err
	}
	inStock, err := validators.ParseQueryBool(r, "inStock")
	if err != nil {
		return filters, err
	}
	filters.InStockOnly = inStock != nil && *inStock
	return filters, nil
}

func ProductCategories(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": dto})
	}
}

// ProductCreate lists a new product under the caller's active store.
func ProductCreate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Create(r.Context(), middleware.StoreUUID(r.Context()), product.CreateInput{
			Name:        strings.TrimSpace(body.Name),
			Description: strings.TrimSpace(body.Description),
			MRP:         body.MRP,
			Price:       body.Price,
			Images:      body.Images,
			Category:    strings.TrimSpace(body.Category),
			InStock:     body.InStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Product created successfully", map[string]any{"product": dto})
	}
}

func ProductUpdate(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), middleware.StoreUUID(r.Context()), productID, product.UpdateInput{
			Name:        trimmed(body.Name),
			Description: trimmed(body.Description),
			MRP:         body.MRP,
			Price:       body.Price,
			Images:      body.Images,
			Category:    trimmed(body.Category),
			InStock:     body.InStock,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Product updated successfully", map[string]any{"product": dto})
	}
}

func ProductDelete(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), middleware.StoreUUID(r.Context()), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Product deleted successfully", nil)
	}
}

// ProductToggleStock flips the in-stock flag of an owned product.
func ProductToggleStock(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			productsUnavailable(w, r, logg)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId", "product")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.ToggleStock(r.Context(), middleware.StoreUUID(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"product": dto})
	}
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}
