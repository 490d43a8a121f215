package types

import "database/sql/driver"

// CartItems is the persisted product id -> quantity mapping stored in users.cart.
type CartItems map[string]int

// Value implements driver.Valuer. A nil map is stored as {}.
func (c CartItems) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	return valueJSON(map[string]int(c), "cart items")
}

// Scan implements sql.Scanner.
func (c *CartItems) Scan(value any) error {
	decoded := map[string]int{}
	if _, err := scanJSON(value, &decoded, "cart items"); err != nil {
		return err
	}
	*c = decoded
	return nil
}
