package types

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"
)

// CouponSnapshot freezes the coupon terms applied to an order.
type CouponSnapshot struct {
	Code        string          `json:"code"`
	Description string          `json:"description,omitempty"`
	Discount    decimal.Decimal `json:"discount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Savings     decimal.Decimal `json:"savings"`
	AppliedAt   time.Time       `json:"appliedAt"`
}

// Value implements driver.Valuer.
func (c CouponSnapshot) Value() (driver.Value, error) {
	return valueJSON(c, "coupon snapshot")
}

// Scan implements sql.Scanner.
func (c *CouponSnapshot) Scan(value any) error {
	var decoded CouponSnapshot
	if _, err := scanJSON(value, &decoded, "coupon snapshot"); err != nil {
		return err
	}
	*c = decoded
	return nil
}
