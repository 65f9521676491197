package inventory

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	inventoryService            = "inventory-service"
	useCaseInventoryReservation = "inventory.reserve"
)

// ReservationResult exposes the outcome of the inventory reservation attempt.
type ReservationResult struct {
	Reserved      bool
	FailureReason string
}

// ReserveInventoryUseCase holds stock for a placed order, all lines or none,
// and reports the outcome as an event either way.
type ReserveInventoryUseCase struct {
	invRepo   dominv.Repository
	publisher domoutbox.Publisher
	ins       *application.Instruments
}

func NewReserveInventoryUseCase(invRepo dominv.Repository, publisher domoutbox.Publisher, tel observability.Observability) *ReserveInventoryUseCase {
	return &ReserveInventoryUseCase{
		invRepo:   invRepo,
		publisher: publisher,
		ins:       application.NewInstruments(tel, inventoryService),
	}
}

func (uc *ReserveInventoryUseCase) Execute(ctx context.Context, e domorder.OrderPlacedEvent) (_ *ReservationResult, err error) {
	ctx, call := uc.ins.Begin(ctx, useCaseInventoryReservation, "ReserveInventory",
		attribute.String("order.id", e.OrderID),
		attribute.Int("order.lines", len(e.Lines)),
	)
	defer func() { call.End(err) }()
	call.Field("order_id", e.OrderID)

	lines := make([]dominv.Line, 0, len(e.Lines))
	for _, l := range e.Lines {
		lines = append(lines, dominv.Line{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	if rerr := uc.invRepo.Reserve(ctx, lines); rerr != nil {
		failed := dominv.NewInventoryReservationFailedEvent(e.OrderID, rerr)
		call.Fail("RESERVE_FAILED")
		call.Field("failure_reason", failed.Reason)
		if failed.ProductID != "" {
			call.Field("product_id", failed.ProductID)
		}
		result := &ReservationResult{FailureReason: failed.Reason}
		if perr := uc.ins.Publish(ctx, uc.publisher, failed); perr != nil {
			call.Field("failure_event_error", perr.Error())
		}
		return result, fmt.Errorf("inventory: reserve: %w", rerr)
	}

	call.Span().AddEvent("inventory.reserved",
		trace.WithAttributes(attribute.String("order.id", e.OrderID)),
	)
	if perr := uc.ins.Publish(ctx, uc.publisher, dominv.NewInventoryReservedEvent(e.OrderID, lines)); perr != nil {
		call.Fail("EVENT_PUBLISH_FAILED")
		return &ReservationResult{Reserved: true}, fmt.Errorf("inventory: publish reserved: %w", perr)
	}
	return &ReservationResult{Reserved: true}, nil
}
