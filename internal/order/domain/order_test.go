package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
)

func TestNewOrderOwnsItsLines(t *testing.T) {
	o := NewOrder("cust-1", PaymentVisa, decimal.RequireFromString("120.50"), []invdomain.PurchaseLine{
		{ProductID: 1, Quantity: 2},
		{ProductID: 5, Quantity: 1},
	})

	if o.ID == "" || o.Reference == "" {
		t.Fatal("order id/reference not generated")
	}
	if !strings.HasPrefix(o.Reference, "ORD-") || len(o.Reference) != 12 {
		t.Errorf("reference %q has unexpected shape", o.Reference)
	}
	if len(o.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(o.Lines))
	}
	for _, l := range o.Lines {
		if l.OrderID != o.ID {
			t.Errorf("line %s owned by %s, want %s", l.ID, l.OrderID, o.ID)
		}
	}
	if o.CreatedAt.IsZero() || !o.CreatedAt.Equal(o.LastModifiedAt) {
		t.Error("timestamps not initialized together")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	cases := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{"PAYPAL", PaymentPaypal, false},
		{"visa", PaymentVisa, false},
		{" master_card ", PaymentMasterCard, false},
		{"CASH", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParsePaymentMethod(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParsePaymentMethod(%q): expected error", c.in)
			}
			continue
		}
		if err != nil || got != c.want {
			t.Errorf("ParsePaymentMethod(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
	}
}
