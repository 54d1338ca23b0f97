package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSONRoundTrip(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2026-03-09"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2026-03-09"` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`"2026-03-09T10:00:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal timestamp: %v", err)
	}
	if d.String() != "2026-03-09" {
		t.Fatalf("expected timestamp truncated to date, got %s", d)
	}

	if err := json.Unmarshal([]byte(`"09/03/2026"`), &d); err == nil {
		t.Fatal("expected invalid date to fail")
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)); err != nil {
		t.Fatalf("scan time: %v", err)
	}
	if d.String() != "2026-01-02" {
		t.Fatalf("unexpected date %s", d)
	}
	if err := d.Scan([]byte("2026-02-03 00:00:00+00:00")); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if d.String() != "2026-02-03" {
		t.Fatalf("unexpected date %s", d)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
}

func TestDateAddDays(t *testing.T) {
	d := NewDate(time.Date(2026, 1, 31, 23, 0, 0, 0, time.UTC))
	if got := d.AddDays(30).String(); got != "2026-03-02" {
		t.Fatalf("expected 2026-03-02, got %s", got)
	}
}
