package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService      = "order-service"
	useCasePlaceOrder = "order.place"

	maxSessionReopen = 3
)

var (
	ErrConflict = domain.ErrConflict
	ErrNotFound = domain.ErrNotFound
)

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Session(ctx context.Context, sessionID string) (*appcart.Store, error)
	Persist(ctx context.Context, store *appcart.Store) error
}

// ShippingRates prices the delivery options. Standard delivery is free.
type ShippingRates struct {
	Express decimal.Decimal
}

func (r ShippingRates) Cost(m domain.ShippingMethod) decimal.Decimal {
	if m == domain.ShippingExpress {
		return r.Express
	}
	return decimal.Zero
}

type PlaceOrderInput struct {
	IdempotencyKey string
	CustomerID     string
	SessionID      string
	Shipping       domain.ShippingMethod
	PaymentMethod  domain.PaymentMethod
	Contact        domain.Contact
}

type PlaceOrderResult struct {
	Order    *domain.Order
	Replayed bool
}

// PlaceOrderUseCase turns the session cart into an order, empties the cart
// and announces order.placed so inventory can reserve stock.
type PlaceOrderUseCase struct {
	repo      domain.Repository
	carts     Carts
	ids       application.IDGenerator
	publisher domoutbox.Publisher
	rates     ShippingRates
	ins       *application.Instruments
}

func NewPlaceOrderUseCase(
	repo domain.Repository,
	carts Carts,
	ids application.IDGenerator,
	publisher domoutbox.Publisher,
	rates ShippingRates,
	tel observability.Observability,
) *PlaceOrderUseCase {
	return &PlaceOrderUseCase{
		repo:      repo,
		carts:     carts,
		ids:       ids,
		publisher: publisher,
		rates:     rates,
		ins:       application.NewInstruments(tel, orderService),
	}
}

func (uc *PlaceOrderUseCase) Execute(ctx context.Context, cmd PlaceOrderInput) (_ *PlaceOrderResult, err error) {
	ctx, call := uc.ins.Begin(ctx, useCasePlaceOrder, "PlaceOrder",
		attribute.String("order.customer_id", cmd.CustomerID),
		attribute.String("order.shipping", string(cmd.Shipping)),
		attribute.String("order.payment_method", string(cmd.PaymentMethod)),
	)
	defer func() { call.End(err) }()
	span := call.Span()

	if strings.TrimSpace(cmd.CustomerID) == "" {
		call.Fail("CUSTOMER_ID_REQUIRED")
		return nil, application.ErrUnauthorized
	}
	if strings.TrimSpace(cmd.SessionID) == "" {
		call.Fail("SESSION_ID_REQUIRED")
		return nil, application.Validation("session id is required")
	}
	if err = ctx.Err(); err != nil {
		call.Fail("CONTEXT_CANCELED")
		return nil, err
	}

	if replay, lookupErr := uc.replay(ctx, cmd); lookupErr != nil {
		call.Fail("IDEMPOTENCY_LOOKUP_FAILED")
		return nil, wrapRepositoryError(lookupErr)
	} else if replay != nil {
		call.Status("IDEMPOTENT_REPLAY")
		span.AddEvent("order.idempotent_replay",
			trace.WithAttributes(attribute.String("order.id", replay.ID)),
		)
		return &PlaceOrderResult{Order: replay, Replayed: true}, nil
	}

	var (
		store    *appcart.Store
		placed   *domain.Order
		replayed *domain.Order
	)
	for attempt := 1; ; attempt++ {
		store, err = uc.carts.Session(ctx, cmd.SessionID)
		if err != nil {
			call.Fail("SESSION_OPEN_FAILED")
			return nil, err
		}
		err = store.Checkout(func(v appcart.View) error {
			entity, derr := domain.New(uc.draft(cmd, v))
			if derr != nil {
				call.Fail("DOMAIN_CONSTRUCTION_FAILED")
				return fmt.Errorf("order: construct: %w", derr)
			}
			if ierr := uc.repo.Insert(ctx, entity); ierr != nil {
				if errors.Is(ierr, domain.ErrConflict) && cmd.IdempotencyKey != "" {
					if existing, lerr := uc.repo.FindByIdempotency(ctx, cmd.CustomerID, cmd.IdempotencyKey); lerr == nil {
						replayed = existing
						return errReplayed
					}
				}
				call.Fail("REPO_INSERT_FAILED")
				return wrapRepositoryError(ierr)
			}
			placed = entity
			return nil
		})
		// the session was closed under us; it reopens from its final snapshot
		if errors.Is(err, appcart.ErrSessionClosed) && attempt < maxSessionReopen {
			continue
		}
		break
	}
	switch {
	case errors.Is(err, errReplayed):
		call.Status("IDEMPOTENT_REPLAY")
		return &PlaceOrderResult{Order: replayed, Replayed: true}, nil
	case errors.Is(err, domcart.ErrEmptyCart):
		call.Fail("CART_EMPTY")
		return nil, err
	case err != nil:
		return nil, err
	}

	call.Field("order_id", placed.ID)
	call.Field("total", placed.Total.String())
	if perr := uc.carts.Persist(ctx, store); perr != nil {
		call.Log.Warn("cart_snapshot_save_failed", observability.F("error", perr.Error()))
	}
	if perr := uc.ins.Publish(ctx, uc.publisher, domain.NewOrderPlacedEvent(placed)); perr != nil {
		call.Status("EVENT_PUBLISH_FAILED")
	}

	span.SetAttributes(attribute.String("order.status", string(placed.Status)))
	span.AddEvent("order.placed",
		trace.WithAttributes(attribute.String("order.id", placed.ID)),
	)
	return &PlaceOrderResult{Order: placed}, nil
}

// errReplayed aborts Checkout without clearing the cart when a concurrent
// request with the same idempotency key won the insert.
var errReplayed = errors.New("order: idempotent replay")

func (uc *PlaceOrderUseCase) replay(ctx context.Context, cmd PlaceOrderInput) (*domain.Order, error) {
	if cmd.IdempotencyKey == "" {
		return nil, nil
	}
	existing, err := uc.repo.FindByIdempotency(ctx, cmd.CustomerID, cmd.IdempotencyKey)
	switch {
	case err == nil:
		return existing, nil
	case errors.Is(err, domain.ErrNotFound):
		return nil, nil
	default:
		return nil, err
	}
}

func (uc *PlaceOrderUseCase) draft(cmd PlaceOrderInput, v appcart.View) domain.Draft {
	lines := make([]domain.Line, 0, len(v.Items))
	for _, item := range v.Items {
		p := item.Product()
		lines = append(lines, domain.Line{
			ProductID: p.ID,
			Title:     p.Title,
			UnitPrice: p.UnitPrice,
			Quantity:  item.Quantity(),
		})
	}
	return domain.Draft{
		ID:             uc.ids.NewID(),
		IdempotencyKey: cmd.IdempotencyKey,
		CustomerID:     cmd.CustomerID,
		StoreID:        v.StoreID,
		Lines:          lines,
		Shipping:       cmd.Shipping,
		ShippingCost:   uc.rates.Cost(cmd.Shipping),
		PaymentMethod:  cmd.PaymentMethod,
		Contact:        cmd.Contact,
	}
}

func wrapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict
	default:
		return application.Repository(err)
	}
}
