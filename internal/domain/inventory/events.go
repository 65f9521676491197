package inventory

import (
	"errors"
	"time"
)

const (
	FailureReasonNotFound          = "not_found"
	FailureReasonInvalidQuantity   = "invalid_quantity"
	FailureReasonInsufficientStock = "insufficient_stock"
	FailureReasonPersistenceError  = "persist_error"
)

// FailureReason maps a Reserve error onto the reason carried by failure events.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return FailureReasonNotFound
	case errors.Is(err, ErrInvalidQuantity):
		return FailureReasonInvalidQuantity
	case errors.Is(err, ErrInsufficientStock):
		return FailureReasonInsufficientStock
	default:
		return FailureReasonPersistenceError
	}
}

// InventoryReservedEvent is emitted when every line of an order is reserved.
type InventoryReservedEvent struct {
	OrderID    string
	Lines      []Line
	OccurredAt time.Time
}

func (InventoryReservedEvent) EventName() string { return "inventory.reserved" }

func NewInventoryReservedEvent(orderID string, lines []Line) InventoryReservedEvent {
	return InventoryReservedEvent{
		OrderID:    orderID,
		Lines:      append([]Line(nil), lines...),
		OccurredAt: time.Now().UTC(),
	}
}

// InventoryReservationFailedEvent is emitted when an order's stock cannot be
// reserved. ProductID is set when a single product caused the failure.
type InventoryReservationFailedEvent struct {
	OrderID    string
	ProductID  string
	Reason     string
	OccurredAt time.Time
}

func (InventoryReservationFailedEvent) EventName() string { return "inventory.reservation_failed" }

func NewInventoryReservationFailedEvent(orderID string, err error) InventoryReservationFailedEvent {
	evt := InventoryReservationFailedEvent{
		OrderID:    orderID,
		Reason:     FailureReason(err),
		OccurredAt: time.Now().UTC(),
	}
	var shortage *ShortageError
	if errors.As(err, &shortage) {
		evt.ProductID = shortage.ProductID
	}
	return evt
}
