package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/gocart-backend/api/middleware"
	internalcart "github.com/angelmondragon/gocart-backend/internal/cart"
)

// stateService keeps one in-memory cart regardless of user.
type stateService struct {
	internalcart.Service
	state *internalcart.State
}

func newStateService() *stateService {
	return &stateService{state: internalcart.NewState(nil)}
}

func (s *stateService) view() *internalcart.View {
	items := s.state.Snapshot()
	return &internalcart.View{Items: items, Total: internalcart.Total(items)}
}

func (s *stateService) Get(context.Context, uuid.UUID) (*internalcart.View, error) {
	return s.view(), nil
}

func (s *stateService) AddItem(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*internalcart.View, error) {
	if err := s.state.Add(productID.String()); err != nil {
		return nil, err
	}
	return s.view(), nil
}

func (s *stateService) RemoveItem(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*internalcart.View, error) {
	s.state.Remove(productID.String())
	return s.view(), nil
}

func (s *stateService) DeleteItem(_ context.Context, _ uuid.UUID, productID uuid.UUID) (*internalcart.View, error) {
	s.state.Delete(productID.String())
	return s.view(), nil
}

func (s *stateService) Clear(context.Context, uuid.UUID) (*internalcart.View, error) {
	s.state.Clear()
	return s.view(), nil
}

func serve(t *testing.T, handler http.Handler, method, target, productID string) internalcart.View {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	if productID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("productId", productID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req.WithContext(ctx))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			Cart internalcart.View `json:"cart"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data.Cart
}

func TestCartHandlersMutateAndReport(t *testing.T) {
	svc := newStateService()
	apple, pear := uuid.NewString(), uuid.NewString()

	serve(t, CartAddItem(svc, nil), http.MethodPost, "/api/v1/cart/items/"+apple, apple)
	serve(t, CartAddItem(svc, nil), http.MethodPost, "/api/v1/cart/items/"+apple, apple)
	view := serve(t, CartAddItem(svc, nil), http.MethodPost, "/api/v1/cart/items/"+pear, pear)
	require.Equal(t, 3, view.Total)

	view = serve(t, CartRemoveItem(svc, nil), http.MethodDelete, "/api/v1/cart/items/"+apple, apple)
	require.Equal(t, 1, view.Items[apple])
	require.Equal(t, 2, view.Total)

	view = serve(t, CartRemoveItem(svc, nil), http.MethodDelete, "/api/v1/cart/items/"+pear+"?all=true", pear)
	require.NotContains(t, view.Items, pear)
	require.Equal(t, 1, view.Total)

	view = serve(t, CartFetch(svc, nil), http.MethodGet, "/api/v1/cart", "")
	require.Equal(t, map[string]int{apple: 1}, view.Items)

	view = serve(t, CartClear(svc, nil), http.MethodDelete, "/api/v1/cart", "")
	require.Empty(t, view.Items)
	require.Zero(t, view.Total)
}

func TestCartItemRejectsMalformedProductID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items/abc", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("productId", "abc")
	ctx := context.WithValue(middleware.WithUserID(req.Context(), uuid.NewString()), chi.RouteCtxKey, rctx)

	rec := httptest.NewRecorder()
	CartAddItem(newStateService(), nil).ServeHTTP(rec, req.WithContext(ctx))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartRequiresLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	CartFetch(newStateService(), nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
