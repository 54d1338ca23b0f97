package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoneyNumber(t *testing.T) {
	out, err := json.Marshal(map[string]any{"totalAmount": MoneyNumber(decimal.RequireFromString("31"))})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"totalAmount":31.00}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestHasMoneyScale(t *testing.T) {
	if !HasMoneyScale(decimal.RequireFromString("15.50")) || !HasMoneyScale(decimal.RequireFromString("15.500")) {
		t.Fatal("expected two decimal amounts to fit")
	}
	if HasMoneyScale(decimal.RequireFromString("15.555")) {
		t.Fatal("expected three decimal amount to be rejected")
	}
}
