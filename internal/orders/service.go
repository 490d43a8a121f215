package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	"github.com/angelmondragon/gocart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/logger"
	"github.com/angelmondragon/gocart-backend/pkg/metrics"
	"github.com/angelmondragon/gocart-backend/pkg/pagination"
	"github.com/angelmondragon/gocart-backend/pkg/stripe"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"total":     "total",
	"status":    "status",
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartPruner interface {
	Prune(ctx context.Context, tx *gorm.DB, userID uuid.UUID, productIDs []uuid.UUID) error
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type paymentIntentCreator interface {
	CreatePaymentIntent(ctx context.Context, req stripe.PaymentIntentRequest) (*stripe.PaymentIntent, error)
}

// Service defines checkout and order lifecycle operations.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, draft Draft) (*CreateResult, error)
	ListForUser(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error)
	ListForStore(ctx context.Context, storeID uuid.UUID, input ListInput) (*ListResult, error)
	Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, viewer Viewer, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error
	CancelStaleUnpaid(ctx context.Context, olderThan time.Duration) (int, error)
}

// ServiceParams wires the order service. Cart, Payments and Metrics are optional.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Cart     cartPruner
	Payments paymentIntentCreator
	Metrics  *metrics.OrderMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	cart     cartPruner
	payments paymentIntentCreator
	metrics  *metrics.OrderMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		cart:     params.Cart,
		payments: params.Payments,
		metrics:  params.Metrics,
		logg:     params.Logger,
		now:      now,
	}, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, draft Draft) (*CreateResult, error) {
	order, err := s.create(ctx, userID, draft)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejected(string(typed.Code()))
		} else {
			s.metrics.IncRejected(string(pkgerrors.CodeInternal))
		}
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, order.ID.String())
	if s.cart != nil {
		s.cart.Invalidate(ctx, userID)
	}
	s.metrics.ObserveCreated(order.PaymentMethod.String(), order.Total)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_method": order.PaymentMethod,
		"total":          order.Total.StringFixed(2),
		"items":          len(order.Items),
	}), "order.created")

	result := &CreateResult{}
	if order.PaymentMethod.IsElectronic() && s.payments != nil {
		if secret := s.openPaymentIntent(ctx, order); secret != "" {
			result.ClientSecret = &secret
		}
	}
	result.Order = FromModel(order)
	return result, nil
}

func (s *service) create(ctx context.Context, userID uuid.UUID, draft Draft) (*models.Order, error) {
	if !draft.PaymentMethod.IsValid() {
		return nil, pkgerrors.Validation("Payment method must be COD or STRIPE")
	}
	if draft.StoreID == uuid.Nil {
		return nil, pkgerrors.Validation("storeId is required")
	}
	if draft.AddressID == uuid.Nil {
		return nil, pkgerrors.Validation("addressId is required")
	}
	if len(draft.Items) == 0 {
		return nil, pkgerrors.Validation("Order must contain at least one item")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		store, err := repo.FindStore(ctx, draft.StoreID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Store not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load store")
		}
		if !store.IsPublic() {
			return pkgerrors.Validation("This store is not accepting orders")
		}
		if _, err := repo.FindAddress(ctx, draft.AddressID, userID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Address not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
		}

		quote, err := NewCalculator(repo, NewPercentCoupons(repo, s.now)).Quote(ctx, userID, draft)
		if err != nil {
			return err
		}

		order = buildOrder(userID, draft, quote)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}

		if s.cart != nil {
			purchased := make([]uuid.UUID, 0, len(quote.Lines))
			for _, line := range quote.Lines {
				purchased = append(purchased, line.ProductID)
			}
			if err := s.cart.Prune(ctx, tx, userID, purchased); err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrder(userID uuid.UUID, draft Draft, quote *Quote) *models.Order {
	items := make([]models.OrderItem, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		})
	}
	return &models.Order{
		UserID:        userID,
		StoreID:       draft.StoreID,
		AddressID:     draft.AddressID,
		Total:         quote.Total,
		Status:        enums.OrderStatusPending,
		IsPaid:        false,
		PaymentMethod: draft.PaymentMethod,
		IsCouponUsed:  quote.Coupon != nil,
		Coupon:        quote.Coupon,
		Items:         items,
	}
}

// openPaymentIntent returns the client secret, or "" when Stripe could not be reached. The order
// stays pending and unpaid and is eventually cancelled by the stale order job.
func (s *service) openPaymentIntent(ctx context.Context, order *models.Order) string {
	intent, err := s.payments.CreatePaymentIntent(ctx, stripe.PaymentIntentRequest{
		OrderID: order.ID.String(),
		UserID:  order.UserID.String(),
		Amount:  order.Total,
	})
	if err != nil {
		s.logg.Error(ctx, "order.payment_intent.failed", err)
		return ""
	}
	if err := s.repo.UpdateOrder(ctx, order.ID, map[string]any{"payment_intent_id": intent.ID}); err != nil {
		s.logg.Error(ctx, "order.payment_intent.persist_failed", err)
	}
	order.PaymentIntentID = &intent.ID
	return intent.ClientSecret
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error) {
	return s.list(ctx, Scope{UserID: &userID}, input)
}

func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID, input ListInput) (*ListResult, error) {
	if storeID == uuid.Nil {
		return nil, pkgerrors.Forbidden("You need to have a store to access this resource")
	}
	return s.list(ctx, Scope{StoreID: &storeID}, input)
}

func (s *service) list(ctx context.Context, scope Scope, input ListInput) (*ListResult, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.Validation("Invalid order status")
	}
	params := pagination.Normalize(input.Page.Page, input.Page.Limit)
	sort := pagination.ParseSort(input.SortBy, input.SortOrder, sortColumns, "createdAt")

	rows, total, err := s.repo.ListOrders(ctx, scope, input, params, sort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return &ListResult{Orders: out, Pagination: pagination.NewMeta(params, total)}, nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	isBuyer := order.UserID == viewer.UserID
	isSeller := viewer.StoreID != uuid.Nil && order.StoreID == viewer.StoreID
	if !isBuyer && !isSeller {
		return nil, pkgerrors.Forbidden("You do not have permission to view this order")
	}
	dto := FromModel(order)
	return &dto, nil
}

func (s *service) UpdateStatus(ctx context.Context, viewer Viewer, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.Validation("Status must be one of pending, processing, shipped, delivered, cancelled")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if viewer.StoreID == uuid.Nil || order.StoreID != viewer.StoreID {
			return pkgerrors.Forbidden("You do not have permission to update this order")
		}
		if order.Status == status {
			updated = order
			return nil
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("Order is already %s", order.Status))
		}
		if err := repo.UpdateOrder(ctx, orderID, map[string]any{"status": status}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if status == enums.OrderStatusCancelled {
		s.metrics.AddCancelled(1)
	}
	dto := FromModel(updated)
	return &dto, nil
}

// MarkPaid records a confirmed payment. Repeated confirmations are no-ops.
func (s *service) MarkPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string) error {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	ctx = s.logg.WithOrderID(ctx, orderID.String())

	changed := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderForUpdate(ctx, orderID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.IsPaid {
			return nil
		}
		if order.PaymentIntentID != nil && paymentIntentID != "" && *order.PaymentIntentID != paymentIntentID {
			return pkgerrors.Validation("payment intent does not match order")
		}
		if order.Status == enums.OrderStatusCancelled {
			s.logg.Warn(ctx, "order.paid_after_cancel")
		}

		paidAt := s.now().UTC()
		updates := map[string]any{"is_paid": true, "paid_at": paidAt}
		if order.PaymentIntentID == nil && paymentIntentID != "" {
			updates["payment_intent_id"] = paymentIntentID
		}
		if err := repo.UpdateOrder(ctx, orderID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
		}
		changed = true
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		s.metrics.IncPaid()
		s.logg.Info(ctx, "order.paid")
	}
	return nil
}

func (s *service) CancelStaleUnpaid(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, pkgerrors.Validation("stale window must be positive")
	}
	cutoff := s.now().UTC().Add(-olderThan)
	n, err := s.repo.CancelStaleUnpaid(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel stale orders")
	}
	s.metrics.AddCancelled(int(n))
	return int(n), nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}
