package order

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseListOrders = "order.list"
	useCaseGetOrder   = "order.get"
)

// History answers order history reads for a customer.
type History struct {
	repo domain.Repository
	ins  *application.Instruments
}

func NewHistory(repo domain.Repository, tel observability.Observability) *History {
	return &History{
		repo: repo,
		ins:  application.NewInstruments(tel, orderService),
	}
}

// List returns the customer's orders, newest first.
func (h *History) List(ctx context.Context, customerID string) (_ []*domain.Order, err error) {
	ctx, call := h.ins.Begin(ctx, useCaseListOrders, "ListOrders")
	defer func() { call.End(err) }()

	if strings.TrimSpace(customerID) == "" {
		call.Fail("CUSTOMER_ID_REQUIRED")
		return nil, application.ErrUnauthorized
	}
	orders, err := h.repo.ListByCustomer(ctx, customerID)
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return nil, wrapRepositoryError(err)
	}
	call.Field("results", len(orders))
	return orders, nil
}

// Get returns one order. Orders of other customers are reported as not
// found rather than forbidden, so ids cannot be probed.
func (h *History) Get(ctx context.Context, customerID, orderID string) (_ *domain.Order, err error) {
	ctx, call := h.ins.Begin(ctx, useCaseGetOrder, "GetOrder",
		attribute.String("order.id", orderID),
	)
	defer func() { call.End(err) }()

	if strings.TrimSpace(customerID) == "" {
		call.Fail("CUSTOMER_ID_REQUIRED")
		return nil, application.ErrUnauthorized
	}
	o, err := h.repo.Get(ctx, orderID)
	if err != nil {
		call.Fail("ORDER_LOOKUP_FAILED")
		return nil, wrapRepositoryError(err)
	}
	if o.CustomerID != customerID {
		call.Fail("NOT_OWNER")
		return nil, ErrNotFound
	}
	return o, nil
}
