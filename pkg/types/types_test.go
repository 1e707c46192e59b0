package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestShippingAddressScanHandlesNullAndBytes(t *testing.T) {
	var addr ShippingAddress
	if err := addr.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if addr != (ShippingAddress{}) {
		t.Fatalf("expected zero address, got %+v", addr)
	}

	if err := addr.Scan([]byte(`{"first_name":"Ada","last_name":"Lovelace","city":"London"}`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if addr.FullName() != "Ada Lovelace" || addr.City != "London" {
		t.Fatalf("unexpected address %+v", addr)
	}

	if err := addr.Scan(12); err == nil {
		t.Fatal("expected error for unsupported scan type")
	}
}

func TestShippingAddressValueRequiresStreet(t *testing.T) {
	if _, err := (ShippingAddress{City: "Paris"}).Value(); err == nil {
		t.Fatal("expected missing address to fail")
	}
}

func TestStringListNeverNull(t *testing.T) {
	var list StringList
	v, err := list.Value()
	if err != nil || v != "[]" {
		t.Fatalf("expected [] for nil list, got %v (%v)", v, err)
	}
	out, err := json.Marshal(struct {
		Features StringList `json:"features"`
	}{})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"features":[]}` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := list.Scan("[\"Bluetooth 5.0\",\"Noise cancelling\"]"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(list) != 2 || list[1] != "Noise cancelling" {
		t.Fatalf("unexpected list %v", list)
	}
}

func TestMoneyRendersTwoDecimals(t *testing.T) {
	payload, err := json.Marshal(map[string]Money{
		"total": NewMoney(decimal.RequireFromString("64.8")),
		"tax":   NewMoney(decimal.RequireFromString("0.795")),
		"zero":  NewMoney(decimal.Zero),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"tax":0.80,"total":64.80,"zero":0.00}`
	if string(payload) != want {
		t.Fatalf("expected %s, got %s", want, payload)
	}
}
