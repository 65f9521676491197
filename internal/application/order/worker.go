package order

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	dominventory "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const workerService = "order-worker"

// Worker moves orders through the reservation states as inventory answers,
// then hands reserved orders to payment via order.inventory_reserved.
type Worker struct {
	repo       domorder.Repository
	subscriber domoutbox.Subscriber
	publisher  domoutbox.Publisher
	ins        *application.Instruments
}

func NewWorker(
	repo domorder.Repository,
	subscriber domoutbox.Subscriber,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Worker {
	return &Worker{
		repo:       repo,
		subscriber: subscriber,
		publisher:  publisher,
		ins:        application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.repo == nil {
		return
	}
	w.subscriber.Subscribe(dominventory.InventoryReservedEvent{}.EventName(), w.handleInventoryReserved)
	w.subscriber.Subscribe(dominventory.InventoryReservationFailedEvent{}.EventName(), w.handleInventoryReservationFailed)
}

func (w *Worker) handleInventoryReserved(ctx context.Context, e domoutbox.Event) (err error) {
	const useCase = "order.worker.inventory_reserved"
	evt, ok := e.(dominventory.InventoryReservedEvent)
	if !ok {
		w.ins.Count(useCase, "ignored")
		return nil
	}

	ctx, call := w.ins.Begin(ctx, useCase, "InventoryReserved",
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
	)
	defer func() { call.End(err) }()
	call.Field("order_id", evt.OrderID)

	order, err := w.transition(ctx, call, evt.OrderID, func(o *domorder.Order) error {
		return o.InventoryReserved()
	})
	if err != nil {
		return err
	}

	if perr := w.ins.Publish(ctx, w.publisher, domorder.NewOrderInventoryReservedEvent(order)); perr != nil {
		call.Status("EVENT_PUBLISH_FAILED")
	}
	return nil
}

func (w *Worker) handleInventoryReservationFailed(ctx context.Context, e domoutbox.Event) (err error) {
	const useCase = "order.worker.inventory_reservation_failed"
	evt, ok := e.(dominventory.InventoryReservationFailedEvent)
	if !ok {
		w.ins.Count(useCase, "ignored")
		return nil
	}

	ctx, call := w.ins.Begin(ctx, useCase, "InventoryReservationFailed",
		attribute.String("event", e.EventName()),
		attribute.String("order.id", evt.OrderID),
		attribute.String("reason", evt.Reason),
	)
	defer func() { call.End(err) }()
	call.Field("order_id", evt.OrderID)
	call.Field("reason", evt.Reason)

	order, err := w.transition(ctx, call, evt.OrderID, func(o *domorder.Order) error {
		return o.InventoryReservationFailed(evt.Reason)
	})
	if err != nil {
		return err
	}

	if perr := w.ins.Publish(ctx, w.publisher, domorder.NewOrderInventoryReservationFailedEvent(order, evt.Reason)); perr != nil {
		call.Status("EVENT_PUBLISH_FAILED")
	}
	return nil
}

func (w *Worker) transition(ctx context.Context, call *application.Call, orderID string, apply func(*domorder.Order) error) (*domorder.Order, error) {
	order, err := w.repo.Get(ctx, orderID)
	if err != nil {
		call.Fail("ORDER_LOAD_FAILED")
		return nil, fmt.Errorf("worker: load order: %w", err)
	}
	if err := apply(order); err != nil {
		call.Fail("STATE_TRANSITION_FAILED")
		return nil, fmt.Errorf("worker: transition %s: %w", order.Status, err)
	}
	if err := w.repo.Update(ctx, order); err != nil {
		call.Fail("ORDER_UPDATE_FAILED")
		return nil, fmt.Errorf("worker: update order: %w", err)
	}
	return order, nil
}
