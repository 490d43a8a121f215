package orders

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	"github.com/angelmondragon/gocart-backend/api/responses"
	"github.com/angelmondragon/gocart-backend/api/validators"
	internalorders "github.com/angelmondragon/gocart-backend/internal/orders"
	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
)

// StoreLookup resolves the store a user owns, if any.
type StoreLookup interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Store, error)
}

type createItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=1000"`
}

type couponRequest struct {
	Code string `json:"code" validate:"required"`
}

type createOrderRequest struct {
	StoreID       uuid.UUID           `json:"storeId" validate:"required"`
	AddressID     uuid.UUID           `json:"addressId" validate:"required"`
	PaymentMethod string              `json:"paymentMethod" validate:"required"`
	Items         []createItemRequest `json:"items" validate:"dive"`
	Coupon        *couponRequest      `json:"coupon" validate:"omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
}

// Create prices and persists an order from the buyer's draft.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBodyLenient(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := enums.ParsePaymentMethod(body.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Validation("Payment method must be COD or STRIPE"))
			return
		}

		draft := internalorders.Draft{
			StoreID:       body.StoreID,
			AddressID:     body.AddressID,
			PaymentMethod: method,
			Items:         make([]internalorders.DraftItem, 0, len(body.Items)),
		}
		for _, item := range body.Items {
			draft.Items = append(draft.Items, internalorders.DraftItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if body.Coupon != nil {
			draft.Coupon = &internalorders.CouponInput{Code: strings.TrimSpace(body.Coupon.Code)}
		}

		result, err := svc.Create(r.Context(), userID, draft)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, "Order placed successfully", result)
	}
}

// ListMine returns the caller's orders as a buyer.
func ListMine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.ListForUser(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "", map[string]any{"orders": result.Orders}, result.Pagination)
	}
}

// ListStore returns orders placed with the caller's active store.
func ListStore(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.StoreID = nil
		result, err := svc.ListForStore(r.Context(), middleware.StoreUUID(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WritePaginated(w, "", map[string]any{"orders": result.Orders}, result.Pagination)
	}
}

// Detail is open to the buyer and to the selling store's owner.
func Detail(svc internalorders.Service, stores StoreLookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		viewer, err := resolveViewer(r, stores)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		dto, err := svc.Get(r.Context(), viewer, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"order": dto})
	}
}

// UpdateStatus lets the selling store move an order along its lifecycle.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg)
			return
		}
		userID, err := middleware.RequireUserID(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId", "order")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := internalorders.Viewer{UserID: userID, StoreID: middleware.StoreUUID(r.Context())}
		dto, err := svc.UpdateStatus(r.Context(), viewer, orderID, enums.OrderStatus(strings.ToLower(strings.TrimSpace(body.Status))))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, "Order status updated successfully", map[string]any{"order": dto})
	}
}

func resolveViewer(r *http.Request, stores StoreLookup) (internalorders.Viewer, error) {
	userID, err := middleware.RequireUserID(r.Context())
	if err != nil {
		return internalorders.Viewer{}, err
	}
	viewer := internalorders.Viewer{UserID: userID}
	if stores == nil {
		return viewer, nil
	}
	store, err := stores.FindByUserID(r.Context(), userID)
	switch {
	case err == nil:
		viewer.StoreID = store.ID
	case !db.IsNotFound(err):
		return viewer, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
	}
	return viewer, nil
}

func listInput(r *http.Request) (internalorders.ListInput, error) {
	page, err := validators.ParsePagination(r)
	if err != nil {
		return internalorders.ListInput{}, err
	}
	query := r.URL.Query()
	input := internalorders.ListInput{
		Page:      page,
		SortBy:    query.Get("sortBy"),
		SortOrder: query.Get("sortOrder"),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(strings.ToLower(raw))
		if err != nil {
			return input, pkgerrors.Validation("Invalid order status")
		}
		input.Status = &status
	}
	if input.StoreID, err = validators.ParseQueryUUID(r, "storeId"); err != nil {
		return input, err
	}
	if input.IsPaid, err = validators.ParseQueryBool(r, "isPaid"); err != nil {
		return input, err
	}
	return input, nil
}
