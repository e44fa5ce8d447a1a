package domain

import (
	"github.com/shopspring/decimal"

	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
)

// OrderConfirmation is published once per successful order creation. It is
// keyed by the order reference so consumers can deduplicate redeliveries.
type OrderConfirmation struct {
	OrderReference string                     `json:"orderReference"`
	TotalAmount    decimal.Decimal            `json:"totalAmount"`
	PaymentMethod  PaymentMethod              `json:"paymentMethod"`
	Customer       CustomerSnapshot           `json:"customer"`
	Products       []invdomain.PurchaseResult `json:"products"`
}

// PaymentConfirmation is the payment subsystem's topic payload; this service
// only consumes it (notification side).
type PaymentConfirmation struct {
	OrderReference    string          `json:"orderReference"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	CustomerFirstName string          `json:"customerFirstName"`
	CustomerLastName  string          `json:"customerLastName"`
	CustomerEmail     string          `json:"customerEmail"`
}
