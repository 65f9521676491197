package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventLine is the product/quantity pair other contexts need from an order.
type EventLine struct {
	ProductID string
	Quantity  int
}

// OrderPlacedEvent is emitted when checkout stores a new order.
// Inventory reacts to it by reserving stock.
type OrderPlacedEvent struct {
	OrderID    string
	CustomerID string
	StoreID    string
	Lines      []EventLine
	Total      decimal.Decimal
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	lines := make([]EventLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, EventLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	return OrderPlacedEvent{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		StoreID:    o.StoreID,
		Lines:      lines,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderInventoryReservedEvent is emitted once the order holds its stock.
type OrderInventoryReservedEvent struct {
	OrderID    string
	OccurredAt time.Time
}

func (OrderInventoryReservedEvent) EventName() string { return "order.inventory_reserved" }

func NewOrderInventoryReservedEvent(o *Order) OrderInventoryReservedEvent {
	return OrderInventoryReservedEvent{
		OrderID:    o.ID,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderInventoryReservationFailedEvent is emitted when stock could not be held.
type OrderInventoryReservationFailedEvent struct {
	OrderID    string
	Reason     string
	OccurredAt time.Time
}

func (OrderInventoryReservationFailedEvent) EventName() string { return "order.inventory_failed" }

func NewOrderInventoryReservationFailedEvent(o *Order, reason string) OrderInventoryReservationFailedEvent {
	return OrderInventoryReservationFailedEvent{
		OrderID:    o.ID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
}
