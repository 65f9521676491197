package payment

import (
	"context"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
)

const paymentWorker = "payment-worker"

type Worker struct {
	subscriber domoutbox.Subscriber
	useCase    application.UseCase[ProcessPaymentInput, *ProcessPaymentResult]
	ins        *application.Instruments
}

func NewWorker(
	subscriber domoutbox.Subscriber,
	useCase application.UseCase[ProcessPaymentInput, *ProcessPaymentResult],
	tel observability.Observability,
) *Worker {
	return &Worker{
		subscriber: subscriber,
		useCase:    useCase,
		ins:        application.NewInstruments(tel, paymentWorker),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil || w.useCase == nil {
		return
	}
	w.subscriber.Subscribe(domorder.OrderInventoryReservedEvent{}.EventName(), w.handleOrderInventoryReserved)
}

func (w *Worker) handleOrderInventoryReserved(ctx context.Context, e domoutbox.Event) error {
	const useCase = "payment.worker.inventory_reserved"
	evt, ok := e.(domorder.OrderInventoryReservedEvent)
	if !ok {
		w.ins.Count(useCase, "ignored")
		return nil
	}

	if _, err := w.useCase.Execute(ctx, ProcessPaymentInput{OrderID: evt.OrderID}); err != nil {
		w.ins.Count(useCase, "error")
		return err
	}
	w.ins.Count(useCase, "success")
	return nil
}
