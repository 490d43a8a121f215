package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a buyer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodStripe PaymentMethod = "STRIPE"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCOD,
	PaymentMethodStripe,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsElectronic reports whether payment is confirmed by an external callback.
func (p PaymentMethod) IsElectronic() bool {
	return p == PaymentMethodStripe
}

// ParsePaymentMethod converts raw input into a PaymentMethod. Matching ignores case.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
