package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	internalorders "github.com/angelmondragon/gocart-backend/internal/orders"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
)

type stubOrders struct {
	internalorders.Service

	draft      internalorders.Draft
	listInput  internalorders.ListInput
	viewer     internalorders.Viewer
	newStatus  enums.OrderStatus
	storeQuery uuid.UUID
}

func (s *stubOrders) Create(_ context.Context, userID uuid.UUID, draft internalorders.Draft) (*internalorders.CreateResult, error) {
	s.draft = draft
	return &internalorders.CreateResult{Order: internalorders.OrderDTO{
		ID:            uuid.New(),
		UserID:        userID,
		StoreID:       draft.StoreID,
		Total:         decimal.RequireFromString("8.50"),
		Status:        enums.OrderStatusPending,
		PaymentMethod: draft.PaymentMethod,
	}}, nil
}

func (s *stubOrders) ListForUser(_ context.Context, _ uuid.UUID, input internalorders.ListInput) (*internalorders.ListResult, error) {
	s.listInput = input
	return &internalorders.ListResult{Orders: []internalorders.OrderDTO{}, Pagination: pagination.NewMeta(input.Page, 0)}, nil
}

func (s *stubOrders) ListForStore(_ context.Context, storeID uuid.UUID, input internalorders.ListInput) (*internalorders.ListResult, error) {
	s.storeQuery = storeID
	s.listInput = input
	return &internalorders.ListResult{Orders: []internalorders.OrderDTO{}, Pagination: pagination.NewMeta(input.Page, 0)}, nil
}

func (s *stubOrders) Get(_ context.Context, viewer internalorders.Viewer, orderID uuid.UUID) (*internalorders.OrderDTO, error) {
	s.viewer = viewer
	return &internalorders.OrderDTO{ID: orderID}, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, viewer internalorders.Viewer, orderID uuid.UUID, status enums.OrderStatus) (*internalorders.OrderDTO, error) {
	s.viewer = viewer
	s.newStatus = status
	return &internalorders.OrderDTO{ID: orderID, Status: status}, nil
}

type stubStoreLookup map[uuid.UUID]*models.Store

func (s stubStoreLookup) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Store, error) {
	if store, ok := s[userID]; ok {
		return store, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func authedRequest(method, target, body string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), userID.String())
	return req.WithContext(ctx)
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Message
}

func TestCreateBuildsDraftAndIgnoresClientPrices(t *testing.T) {
	svc := &stubOrders{}
	storeID, addressID, productID := uuid.New(), uuid.New(), uuid.New()
	body := `{"storeId":"` + storeID.String() + `","addressId":"` + addressID.String() + `","paymentMethod":"stripe",` +
		`"total":1,"items":[{"productId":"` + productID.String() + `","quantity":2,"price":0.01}],"coupon":{"code":" SAVE10 "}}`

	rec := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Equal(t, storeID, svc.draft.StoreID)
	require.Equal(t, enums.PaymentMethodStripe, svc.draft.PaymentMethod)
	require.Equal(t, []internalorders.DraftItem{{ProductID: productID, Quantity: 2}}, svc.draft.Items)
	require.NotNil(t, svc.draft.Coupon)
	require.Equal(t, "SAVE10", svc.draft.Coupon.Code)
}

func TestCreateLeavesOrderLoggingToService(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "orders-test", Format: logger.FormatJSON, Output: &buf})
	body := `{"storeId":"` + uuid.NewString() + `","addressId":"` + uuid.NewString() + `","paymentMethod":"COD",` +
		`"items":[{"productId":"` + uuid.NewString() + `","quantity":1}]}`

	rec := httptest.NewRecorder()
	Create(&stubOrders{}, logg).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/orders", body, uuid.New()))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotContains(t, buf.String(), "order.created")
}

func TestCreateRejectsBadInput(t *testing.T) {
	storeID, addressID := uuid.New().String(), uuid.New().String()
	cases := []struct {
		name    string
		body    string
		message string
	}{
		{
			name:    "unknown payment method",
			body:    `{"storeId":"` + storeID + `","addressId":"` + addressID + `","paymentMethod":"cash","items":[]}`,
			message: "Payment method must be COD or STRIPE",
		},
		{
			name:    "zero quantity",
			body:    `{"storeId":"` + storeID + `","addressId":"` + addressID + `","paymentMethod":"COD","items":[{"productId":"` + uuid.NewString() + `","quantity":0}]}`,
			message: "Validation failed: quantity is required",
		},
		{
			name:    "quantity above line cap",
			body:    `{"storeId":"` + storeID + `","addressId":"` + addressID + `","paymentMethod":"COD","items":[{"productId":"` + uuid.NewString() + `","quantity":1001}]}`,
			message: "Validation failed: quantity must be at most 1000",
		},
		{
			name:    "empty body",
			body:    ``,
			message: "Request body is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubOrders{}
			rec := httptest.NewRecorder()
			Create(svc, nil).ServeHTTP(rec, authedRequest(http.MethodPost, "/api/v1/orders", tc.body, uuid.New()))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, tc.message, errorMessage(t, rec))
			require.Nil(t, svc.draft.Items)
		})
	}
}

func TestCreateRequiresLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	Create(&stubOrders{}, nil).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListMineParsesFilters(t *testing.T) {
	svc := &stubOrders{}
	storeID := uuid.New()
	rec := httptest.NewRecorder()
	target := "/api/v1/orders?page=2&limit=5&status=SHIPPED&isPaid=true&storeId=" + storeID.String() + "&sortBy=total&sortOrder=asc"
	ListMine(svc, nil).ServeHTTP(rec, authedRequest(http.MethodGet, target, "", uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 2, svc.listInput.Page.Page)
	require.Equal(t, 5, svc.listInput.Page.Limit)
	require.Equal(t, enums.OrderStatusShipped, *svc.listInput.Status)
	require.True(t, *svc.listInput.IsPaid)
	require.Equal(t, storeID, *svc.listInput.StoreID)
	require.Equal(t, "total", svc.listInput.SortBy)
}

func TestListMineRejectsUnknownStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ListMine(&stubOrders{}, nil).ServeHTTP(rec, authedRequest(http.MethodGet, "/api/v1/orders?status=lost", "", uuid.New()))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid order status", errorMessage(t, rec))
}

func TestListStoreScopesToCallerStore(t *testing.T) {
	svc := &stubOrders{}
	storeID := uuid.New()
	req := authedRequest(http.MethodGet, "/api/v1/orders/store?storeId="+uuid.NewString(), "", uuid.New())
	req = req.WithContext(middleware.WithStoreID(req.Context(), storeID.String()))

	rec := httptest.NewRecorder()
	ListStore(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, storeID, svc.storeQuery)
	require.Nil(t, svc.listInput.StoreID)
}

func TestDetailResolvesViewerStore(t *testing.T) {
	owner := uuid.New()
	store := &models.Store{ID: uuid.New(), UserID: owner}
	orderID := uuid.New()

	t.Run("store owner", func(t *testing.T) {
		svc := &stubOrders{}
		req := withParam(authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", owner), "orderId", orderID.String())
		rec := httptest.NewRecorder()
		Detail(svc, stubStoreLookup{owner: store}, nil).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, store.ID, svc.viewer.StoreID)
	})

	t.Run("buyer without store", func(t *testing.T) {
		svc := &stubOrders{}
		buyer := uuid.New()
		req := withParam(authedRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), "", buyer), "orderId", orderID.String())
		rec := httptest.NewRecorder()
		Detail(svc, stubStoreLookup{owner: store}, nil).ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, buyer, svc.viewer.UserID)
		require.Equal(t, uuid.Nil, svc.viewer.StoreID)
	})

	t.Run("malformed id", func(t *testing.T) {
		req := withParam(authedRequest(http.MethodGet, "/api/v1/orders/nope", "", owner), "orderId", "nope")
		rec := httptest.NewRecorder()
		Detail(&stubOrders{}, stubStoreLookup{}, nil).ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid order ID", errorMessage(t, rec))
	})
}

func TestUpdateStatusNormalizesInput(t *testing.T) {
	svc := &stubOrders{}
	storeID, orderID := uuid.New(), uuid.New()
	req := authedRequest(http.MethodPatch, "/api/v1/orders/"+orderID.String()+"/status", `{"status":" Shipped "}`, uuid.New())
	req = req.WithContext(middleware.WithStoreID(req.Context(), storeID.String()))
	req = withParam(req, "orderId", orderID.String())

	rec := httptest.NewRecorder()
	UpdateStatus(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, enums.OrderStatusShipped, svc.newStatus)
	require.Equal(t, storeID, svc.viewer.StoreID)
}
