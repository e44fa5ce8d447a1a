package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	invdomain "github.com/orderflow-io/orderflow/internal/inventory/domain"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentFailure   = errors.New("payment failed")
	ErrValidation       = errors.New("invalid order request")
)

type PaymentMethod string

const (
	PaymentPaypal     PaymentMethod = "PAYPAL"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentVisa       PaymentMethod = "VISA"
	PaymentMasterCard PaymentMethod = "MASTER_CARD"
	PaymentBitcoin    PaymentMethod = "BITCOIN"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentPaypal, PaymentCreditCard, PaymentVisa, PaymentMasterCard, PaymentBitcoin:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown payment method %q", ErrValidation, s)
}

// Order is created once by the workflow and never updated or deleted.
type Order struct {
	ID             string
	Reference      string
	TotalAmount    decimal.Decimal
	PaymentMethod  PaymentMethod
	CustomerID     string
	CreatedAt      time.Time
	LastModifiedAt time.Time
	Lines          []OrderLine
}

// OrderLine is exclusively owned by its Order; immutable once written.
type OrderLine struct {
	ID        string
	OrderID   string
	ProductID int
	Quantity  float64
}

type CustomerSnapshot struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func NewOrder(customerID string, method PaymentMethod, amount decimal.Decimal, lines []invdomain.PurchaseLine) Order {
	id := uuid.NewString()
	now := time.Now().UTC()
	o := Order{
		ID:             id,
		Reference:      newReference(),
		TotalAmount:    amount,
		PaymentMethod:  method,
		CustomerID:     customerID,
		CreatedAt:      now,
		LastModifiedAt: now,
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, OrderLine{
			ID:        uuid.NewString(),
			OrderID:   id,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
		})
	}
	return o
}

// newReference builds the human-readable order reference, e.g. ORD-1A2B3C4D.
func newReference() string {
	short := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return "ORD-" + short
}
