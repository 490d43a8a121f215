package orders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/angelmondragon/gocart-backend/pkg/stripe"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePayments struct {
	requests []stripe.PaymentIntentRequest
	err      error
}

func (f *fakePayments) CreatePaymentIntent(ctx context.Context, req stripe.PaymentIntentRequest) (*stripe.PaymentIntent, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_" + req.OrderID[:8], ClientSecret: "secret_" + req.OrderID[:8]}, nil
}

type recordingCart struct {
	pruned      []uuid.UUID
	invalidated int
}

func (r *recordingCart) Prune(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error {
	r.pruned = append(r.pruned, productIDs...)
	return nil
}

func (r *recordingCart) Invalidate(ctx context.Context, userID uuid.UUID) {
	r.invalidated++
}

type orderFixture struct {
	svc      Service
	client   *db.Client
	payments *fakePayments
	cart     *recordingCart
	buyer    uuid.UUID
	seller   uuid.UUID
	store    models.Store
	address  models.Address
	products []models.Product
	now      time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	client := dbtest.Client(t)
	conn := client.DB()

	buyer := models.User{Name: "Buyer", Email: "buyer@example.com", PasswordHash: "x"}
	seller := models.User{Name: "Seller", Email: "seller@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&buyer).Error)
	require.NoError(t, conn.Create(&seller).Error)

	store := models.Store{
		UserID: seller.ID, Name: "Shop", Description: "A shop", Username: "shop",
		Address: "1 Road", Logo: "logo", Email: "shop@example.com", Contact: "123",
		Status: enums.StoreStatusApproved, IsActive: true,
	}
	require.NoError(t, conn.Create(&store).Error)

	address := models.Address{
		UserID: buyer.ID, Name: "Buyer", Email: "buyer@example.com", Street: "2 Lane",
		City: "Town", State: "ST", Zip: "00001", Country: "US", Phone: "555",
	}
	require.NoError(t, conn.Create(&address).Error)

	var products []models.Product
	for _, price := range []string{"12.50", "3.25"} {
		p := models.Product{
			StoreID: store.ID, Name: "item " + price, Description: "desc", MRP: decimal.RequireFromString(price),
			Price: decimal.RequireFromString(price), Images: pq.StringArray{"img"}, Category: "Misc", InStock: true,
		}
		require.NoError(t, conn.Create(&p).Error)
		products = append(products, p)
	}

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	payments := &fakePayments{}
	cart := &recordingCart{}
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(conn),
		Tx:       client,
		Cart:     cart,
		Payments: payments,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:      func() time.Time { return now },
	})
	require.NoError(t, err)

	return &orderFixture{
		svc: svc, client: client, payments: payments, cart: cart,
		buyer: buyer.ID, seller: seller.ID, store: store, address: address, products: products, now: now,
	}
}

func (f *orderFixture) draft(method enums.PaymentMethod) Draft {
	return Draft{
		StoreID:       f.store.ID,
		AddressID:     f.address.ID,
		PaymentMethod: method,
		Items: []DraftItem{
			{ProductID: f.products[1].ID, Quantity: 2},
			{ProductID: f.products[0].ID, Quantity: 1},
		},
	}
}

func countOrders(t *testing.T, conn *gorm.DB) (int64, int64) {
	t.Helper()
	var orders, items int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&items).Error)
	return orders, items
}

func TestCreateCODPersistsOrderAndItems(t *testing.T) {
	f := newOrderFixture(t)
	res, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodCOD))
	require.NoError(t, err)
	require.Nil(t, res.ClientSecret)
	require.Empty(t, f.payments.requests)

	order := res.Order
	require.True(t, order.Total.Equal(decimal.RequireFromString("19.00")), order.Total.String())
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.False(t, order.IsPaid)
	require.False(t, order.IsCouponUsed)
	require.Len(t, order.Items, 2)
	require.Equal(t, f.products[1].ID, order.Items[0].ProductID)

	loaded, err := f.svc.Get(context.Background(), Viewer{UserID: f.buyer}, order.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	require.Equal(t, f.products[1].ID, loaded.Items[0].ProductID)
	require.True(t, loaded.Items[0].LineTotal.Equal(decimal.RequireFromString("6.50")))
	require.True(t, loaded.Total.Equal(order.Total))

	require.ElementsMatch(t, []uuid.UUID{f.products[0].ID, f.products[1].ID}, f.cart.pruned)
	require.Equal(t, 1, f.cart.invalidated)
}

func TestCreateRollsBackOnMissingProduct(t *testing.T) {
	f := newOrderFixture(t)
	draft := f.draft(enums.PaymentMethodCOD)
	draft.Items = append(draft.Items, DraftItem{ProductID: uuid.New(), Quantity: 1})

	_, err := f.svc.Create(context.Background(), f.buyer, draft)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	orders, items := countOrders(t, f.client.DB())
	require.Zero(t, orders)
	require.Zero(t, items)
	require.Zero(t, f.cart.invalidated)
}

func TestCreateValidatesDraft(t *testing.T) {
	f := newOrderFixture(t)

	empty := f.draft(enums.PaymentMethodCOD)
	empty.Items = nil
	_, err := f.svc.Create(context.Background(), f.buyer, empty)
	require.Equal(t, "Order must contain at least one item", pkgerrors.As(err).Message())

	_, err = f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethod("CARD")))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	foreign := f.draft(enums.PaymentMethodCOD)
	_, err = f.svc.Create(context.Background(), uuid.New(), foreign)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCreateStripeOpensPaymentIntent(t *testing.T) {
	f := newOrderFixture(t)
	res, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	require.NotNil(t, res.ClientSecret)
	require.False(t, res.Order.IsPaid)
	require.NotNil(t, res.Order.PaymentIntentID)
	require.Len(t, f.payments.requests, 1)
	require.True(t, f.payments.requests[0].Amount.Equal(res.Order.Total))

	stored, err := NewRepository(f.client.DB()).FindOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	require.Equal(t, *res.Order.PaymentIntentID, *stored.PaymentIntentID)
}

func TestCreateStripeFailureKeepsOrder(t *testing.T) {
	f := newOrderFixture(t)
	f.payments.err = errors.New("stripe down")
	res, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	require.Nil(t, res.ClientSecret)
	orders, _ := countOrders(t, f.client.DB())
	require.EqualValues(t, 1, orders)
}

func TestCreateAppliesStoredCoupon(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.client.DB().Create(&models.Coupon{
		Code: "TEN", Description: "ten percent", Discount: decimal.NewFromInt(10), ExpiresAt: f.now.Add(24 * time.Hour),
	}).Error)

	draft := f.draft(enums.PaymentMethodCOD)
	draft.Coupon = &CouponInput{Code: "ten"}
	res, err := f.svc.Create(context.Background(), f.buyer, draft)
	require.NoError(t, err)
	require.True(t, res.Order.IsCouponUsed)
	require.True(t, res.Order.Total.Equal(decimal.RequireFromString("17.10")), res.Order.Total.String())

	loaded, err := f.svc.Get(context.Background(), Viewer{UserID: f.buyer}, res.Order.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.Coupon)
	require.Equal(t, "TEN", loaded.Coupon.Code)
	require.True(t, loaded.Coupon.Savings.Equal(decimal.RequireFromString("1.90")))
}

func TestGetAndUpdateStatusPermissions(t *testing.T) {
	f := newOrderFixture(t)
	res, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodCOD))
	require.NoError(t, err)
	orderID := res.Order.ID

	_, err = f.svc.Get(context.Background(), Viewer{UserID: uuid.New()}, orderID)
	require.Equal(t, "You do not have permission to view this order", pkgerrors.As(err).Message())

	_, err = f.svc.Get(context.Background(), Viewer{UserID: f.seller, StoreID: f.store.ID}, orderID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), Viewer{UserID: f.buyer}, orderID, enums.OrderStatusShipped)
	require.Equal(t, "You do not have permission to update this order", pkgerrors.As(err).Message())

	_, err = f.svc.UpdateStatus(context.Background(), Viewer{StoreID: f.store.ID}, orderID, enums.OrderStatus("lost"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	seller := Viewer{UserID: f.seller, StoreID: f.store.ID}
	updated, err := f.svc.UpdateStatus(context.Background(), seller, orderID, enums.OrderStatusDelivered)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, updated.Status)

	_, err = f.svc.UpdateStatus(context.Background(), seller, orderID, enums.OrderStatusPending)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.UpdateStatus(context.Background(), seller, uuid.New(), enums.OrderStatusShipped)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListForUserAndStore(t *testing.T) {
	f := newOrderFixture(t)
	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodCOD))
		require.NoError(t, err)
	}

	res, err := f.svc.ListForUser(context.Background(), f.buyer, ListInput{Page: pagination.Params{Page: 1, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, res.Orders, 2)
	require.EqualValues(t, 3, res.Pagination.Total)
	require.True(t, res.Pagination.HasMore)
	require.Len(t, res.Orders[0].Items, 2)

	paid := true
	res, err = f.svc.ListForUser(context.Background(), f.buyer, ListInput{IsPaid: &paid})
	require.NoError(t, err)
	require.Empty(t, res.Orders)

	res, err = f.svc.ListForStore(context.Background(), f.store.ID, ListInput{SortBy: "total", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, res.Orders, 3)

	_, err = f.svc.ListForStore(context.Background(), uuid.Nil, ListInput{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	bad := enums.OrderStatus("nope")
	_, err = f.svc.ListForUser(context.Background(), f.buyer, ListInput{Status: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	f := newOrderFixture(t)
	res, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	intentID := *res.Order.PaymentIntentID

	require.NoError(t, f.svc.MarkPaid(context.Background(), res.Order.ID, intentID))
	require.NoError(t, f.svc.MarkPaid(context.Background(), res.Order.ID, intentID))

	loaded, err := f.svc.Get(context.Background(), Viewer{UserID: f.buyer}, res.Order.ID)
	require.NoError(t, err)
	require.True(t, loaded.IsPaid)
	require.NotNil(t, loaded.PaidAt)

	other, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	err = f.svc.MarkPaid(context.Background(), other.Order.ID, "pi_mismatch")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	err = f.svc.MarkPaid(context.Background(), uuid.New(), "pi_x")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestCancelStaleUnpaid(t *testing.T) {
	f := newOrderFixture(t)
	conn := f.client.DB()

	stale, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	fresh, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodStripe))
	require.NoError(t, err)
	cod, err := f.svc.Create(context.Background(), f.buyer, f.draft(enums.PaymentMethodCOD))
	require.NoError(t, err)

	old := f.now.Add(-48 * time.Hour)
	require.NoError(t, conn.Model(&models.Order{}).Where("id IN ?", []uuid.UUID{stale.Order.ID, cod.Order.ID}).
		Update("created_at", old).Error)
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", fresh.Order.ID).
		Update("created_at", f.now.Add(-time.Hour)).Error)

	n, err := f.svc.CancelStaleUnpaid(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := f.svc.Get(context.Background(), Viewer{UserID: f.buyer}, stale.Order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, got.Status)

	got, err = f.svc.Get(context.Background(), Viewer{UserID: f.buyer}, cod.Order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, got.Status)
}
