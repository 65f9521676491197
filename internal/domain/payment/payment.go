package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Processor charges an order. A declined charge is StatusFailed with a nil error.
type Processor interface {
	Pay(ctx context.Context, orderID string, amount decimal.Decimal) (Status, error)
}

// PaymentProcessedEvent reports the result of a charge attempt.
type PaymentProcessedEvent struct {
	OrderID    string
	Status     Status
	Amount     decimal.Decimal
	OccurredAt time.Time
}

func (PaymentProcessedEvent) EventName() string { return "payment.processed" }

func NewPaymentProcessedEvent(orderID string, status Status, amount decimal.Decimal) PaymentProcessedEvent {
	return PaymentProcessedEvent{
		OrderID:    orderID,
		Status:     status,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
}
