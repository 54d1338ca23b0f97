package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits stored for currency amounts.
const MoneyScale = 2

// MoneyNumber renders an amount as a bare JSON number with two decimals.
func MoneyNumber(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(MoneyScale))
}

// HasMoneyScale reports whether d fits in a NUMERIC(_,2) column without rounding.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
