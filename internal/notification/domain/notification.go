package domain

import "time"

type Kind string

const (
	KindOrderConfirmation   Kind = "ORDER_CONFIRMATION"
	KindPaymentConfirmation Kind = "PAYMENT_CONFIRMATION"
)

// Notification is the durable record of one confirmation handled for a
// customer. OrderReference is the dedup key: at-least-once delivery means
// the same confirmation can arrive twice.
type Notification struct {
	ID             string
	Kind           Kind
	OrderReference string
	CustomerEmail  string
	Payload        []byte
	CreatedAt      time.Time
}
