package orders

import (
	"context"
	"fmt"

	"github.com/angelmondragon/gocart-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/gocart-backend/pkg/errors"
	"github.com/angelmondragon/gocart-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxItemQuantity caps the units of a single draft line.
const MaxItemQuantity = 1000

// maxOrderAmount is the largest value a numeric(12,2) money column holds.
var maxOrderAmount = decimal.RequireFromString("9999999999.99")

// ProductFinder resolves catalog rows in one batched lookup.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// CouponApplier adjusts a draft total for a coupon code and returns the terms it applied.
type CouponApplier interface {
	Apply(ctx context.Context, userID uuid.UUID, subtotal decimal.Decimal, code string) (decimal.Decimal, *types.CouponSnapshot, error)
}

// QuotedLine is one priced line of a draft, in input order.
type QuotedLine struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is the authoritative price of a draft.
type Quote struct {
	Lines    []QuotedLine
	Subtotal decimal.Decimal
	Total    decimal.Decimal
	Coupon   *types.CouponSnapshot
}

// Calculator prices drafts from catalog prices only; client supplied amounts never reach it.
type Calculator struct {
	products ProductFinder
	coupons  CouponApplier
}

// NewCalculator wires a calculator. coupons may be nil when coupons are disabled.
func NewCalculator(products ProductFinder, coupons CouponApplier) *Calculator {
	return &Calculator{products: products, coupons: coupons}
}

// Quote validates the draft items and computes the order total.
func (c *Calculator) Quote(ctx context.Context, userID uuid.UUID, draft Draft) (*Quote, error) {
	if len(draft.Items) == 0 {
		return nil, pkgerrors.Validation("Order must contain at least one item")
	}

	ids := make([]uuid.UUID, 0, len(draft.Items))
	seen := make(map[uuid.UUID]struct{}, len(draft.Items))
	for i, item := range draft.Items {
		if item.Quantity < 1 {
			return nil, pkgerrors.Validation(fmt.Sprintf("items[%d].quantity must be at least 1", i))
		}
		if item.Quantity > MaxItemQuantity {
			return nil, pkgerrors.Validation(fmt.Sprintf("items[%d].quantity must be at most %d", i, MaxItemQuantity))
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	rows, err := c.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}
	catalog := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		catalog[row.ID] = row
	}

	// every product must resolve before any of them is checked for sale
	resolved := make([]models.Product, len(draft.Items))
	for i, item := range draft.Items {
		product, ok := catalog[item.ProductID]
		if !ok {
			return nil, pkgerrors.NotFound("Product", item.ProductID.String())
		}
		resolved[i] = product
	}

	quote := &Quote{Lines: make([]QuotedLine, 0, len(draft.Items)), Subtotal: decimal.Zero}
	for i, item := range draft.Items {
		product := resolved[i]
		if draft.StoreID != uuid.Nil && product.StoreID != draft.StoreID {
			return nil, pkgerrors.Validation(fmt.Sprintf("Product %s is not sold by this store", product.ID))
		}
		if !product.InStock {
			return nil, pkgerrors.Validation(fmt.Sprintf("Product %s is out of stock", product.ID))
		}
		line := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		quote.Lines = append(quote.Lines, QuotedLine{
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: line,
		})
		quote.Subtotal = quote.Subtotal.Add(line)
	}
	if quote.Subtotal.GreaterThan(maxOrderAmount) {
		return nil, pkgerrors.Validation("Order total exceeds the maximum allowed amount")
	}
	quote.Total = quote.Subtotal

	if draft.Coupon != nil && draft.Coupon.Code != "" {
		if c.coupons == nil {
			return nil, pkgerrors.Validation("Coupons are not available")
		}
		adjusted, snapshot, err := c.coupons.Apply(ctx, userID, quote.Subtotal, draft.Coupon.Code)
		if err != nil {
			return nil, err
		}
		quote.Total = adjusted
		quote.Coupon = snapshot
	}
	return quote, nil
}
