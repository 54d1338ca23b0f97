package enums

import (
	"fmt"
	"strings"
)

// PricePolicy decides what happens when a submitted line price differs from
// the medicine's current price.
type PricePolicy string

const (
	// PricePolicyReject fails the sale on any mismatch.
	PricePolicyReject PricePolicy = "reject"
	// PricePolicyAuthoritative ignores the submitted price and charges the catalogue price.
	PricePolicyAuthoritative PricePolicy = "authoritative"
)

var validPricePolicies = []PricePolicy{
	PricePolicyReject,
	PricePolicyAuthoritative,
}

// String implements fmt.Stringer.
func (p PricePolicy) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PricePolicy.
func (p PricePolicy) IsValid() bool {
	for _, candidate := range validPricePolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePricePolicy converts raw input into a PricePolicy.
func ParsePricePolicy(value string) (PricePolicy, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPricePolicies {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price policy %q", value)
}
