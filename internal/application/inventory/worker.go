package inventory

import (
	"context"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
)

const workerService = "inventory-worker"

type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[domorder.OrderPlacedEvent, *ReservationResult]
	ins        *application.Instruments
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[domorder.OrderPlacedEvent, *ReservationResult],
	tel observability.Observability,
) *Worker {
	return &Worker{
		subscriber: subscriber,
		useCase:    useCase,
		ins:        application.NewInstruments(tel, workerService),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(domorder.OrderPlacedEvent{}.EventName(), w.handleOrderPlaced)
}

// handleOrderPlaced runs the reservation. A failed reservation is a normal
// business outcome already published as an event, so it is not an error here.
func (w *Worker) handleOrderPlaced(ctx context.Context, e domoutbox.Event) error {
	const useCase = "inventory.worker.order_placed"
	evt, ok := e.(domorder.OrderPlacedEvent)
	if !ok {
		w.ins.Count(useCase, "ignored")
		return nil
	}

	res, err := w.useCase.Execute(ctx, evt)
	if err != nil && (res == nil || res.Reserved) {
		return err
	}
	w.ins.Count(useCase, "success")
	return nil
}
