package enums

import "testing"

func TestParsePaymentMethod(t *testing.T) {
	cases := map[string]PaymentMethod{
		"cash":   PaymentMethodCash,
		" Card ": PaymentMethodCard,
		"upi":    PaymentMethodUPI,
		"Cheque": PaymentMethod("Cheque"),
	}
	for raw, want := range cases {
		got, err := ParsePaymentMethod(raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %q got %q", raw, want, got)
		}
	}
	if _, err := ParsePaymentMethod("   "); err == nil {
		t.Fatal("expected blank payment method to fail")
	}
}

func TestPaymentMethodMetricLabel(t *testing.T) {
	if got := PaymentMethodUPI.MetricLabel(); got != "upi" {
		t.Fatalf("expected upi, got %q", got)
	}
	if got := PaymentMethod("Cheque").MetricLabel(); got != "other" {
		t.Fatalf("expected other, got %q", got)
	}
}

func TestParsePricePolicy(t *testing.T) {
	if p, err := ParsePricePolicy("REJECT"); err != nil || p != PricePolicyReject {
		t.Fatalf("expected reject, got %q (%v)", p, err)
	}
	if p, err := ParsePricePolicy("authoritative"); err != nil || !p.IsValid() {
		t.Fatalf("expected authoritative, got %q (%v)", p, err)
	}
	if _, err := ParsePricePolicy("clamp"); err == nil {
		t.Fatal("expected unknown policy to fail")
	}
}
