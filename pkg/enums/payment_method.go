package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer settled a sale. The set is open:
// unknown values are stored as submitted.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "Cash"
	PaymentMethodCard PaymentMethod = "Card"
	PaymentMethodUPI  PaymentMethod = "UPI"
)

var knownPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
	PaymentMethodUPI,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsKnown reports whether the value is one of the methods offered at the till.
func (p PaymentMethod) IsKnown() bool {
	for _, candidate := range knownPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// MetricLabel bounds label cardinality for unknown methods.
func (p PaymentMethod) MetricLabel() string {
	if p.IsKnown() {
		return strings.ToLower(string(p))
	}
	return "other"
}

// ParsePaymentMethod trims raw input and canonicalises known methods case-insensitively.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("payment method is required")
	}
	for _, candidate := range knownPaymentMethods {
		if strings.EqualFold(string(candidate), trimmed) {
			return candidate, nil
		}
	}
	return PaymentMethod(trimmed), nil
}
