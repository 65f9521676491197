package cart

import (
	"context"

	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability/logctx"
)

const workerService = "cart-worker"

// Worker turns cart.item_added facts into the cart_items_added_total counter.
type Worker struct {
	subscriber domoutbox.Subscriber
	added      observability.Counter // cart_items_added_total{store}
	log        observability.Logger
}

func NewWorker(subscriber domoutbox.Subscriber, tel observability.Observability) *Worker {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Worker{
		subscriber: subscriber,
		added:      tel.Metrics().Counter(observability.MCartItemsAdded),
		log:        tel.Logger().With(observability.F("service", workerService)),
	}
}

func (w *Worker) Start() {
	if w.subscriber == nil {
		return
	}
	w.subscriber.Subscribe(domcart.ItemAddedEvent{}.EventName(), w.handleItemAdded)
}

func (w *Worker) handleItemAdded(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domcart.ItemAddedEvent)
	if !ok {
		return nil
	}
	w.added.Add(float64(evt.Quantity), observability.L("store", evt.StoreID))
	logctx.FromOr(ctx, w.log).Debug("cart_item_added",
		observability.F("session_id", evt.SessionID),
		observability.F("product_id", evt.ProductID),
		observability.F("quantity", evt.Quantity),
		observability.F("seq", evt.Seq),
	)
	return nil
}
