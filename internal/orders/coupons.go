package orders

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/gocart-backend/pkg/db"
	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type couponStore interface {
	FindCoupon(ctx context.Context, code string) (*models.Coupon, error)
	CountOrdersByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

var hundred = decimal.NewFromInt(100)

// PercentCoupons applies percentage coupons from the coupons table.
type PercentCoupons struct {
	store couponStore
	now   func() time.Time
}

// NewPercentCoupons builds the default CouponApplier.
func NewPercentCoupons(store couponStore, now func() time.Time) *PercentCoupons {
	if now == nil {
		now = time.Now
	}
	return &PercentCoupons{store: store, now: now}
}

func (p *PercentCoupons) Apply(ctx context.Context, userID uuid.UUID, subtotal decimal.Decimal, code string) (decimal.Decimal, *types.CouponSnapshot, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return subtotal, nil, nil
	}

	coupon, err := p.store.FindCoupon(ctx, code)
	if err != nil {
		if db.IsNotFound(err) {
			return decimal.Zero, nil, pkgerrors.Validation("Invalid coupon code")
		}
		return decimal.Zero, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load coupon")
	}

	now := p.now().UTC()
	if !coupon.ExpiresAt.After(now) {
		return decimal.Zero, nil, pkgerrors.Validation("Coupon has expired")
	}
	if coupon.ForNewUser {
		placed, err := p.store.CountOrdersByUser(ctx, userID)
		if err != nil {
			return decimal.Zero, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
		}
		if placed > 0 {
			return decimal.Zero, nil, pkgerrors.Validation("Coupon is only valid for new users")
		}
	}

	savings := subtotal.Mul(coupon.Discount).Div(hundred).Round(2)
	if savings.GreaterThan(subtotal) {
		savings = subtotal
	}
	total := subtotal.Sub(savings)

	return total, &types.CouponSnapshot{
		Code:        coupon.Code,
		Description: coupon.Description,
		Discount:    coupon.Discount,
		Subtotal:    subtotal,
		Savings:     savings,
		AppliedAt:   now,
	}, nil
}
