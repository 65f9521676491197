package order

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	appcart "github.com/Zhima-Mochi/corralon-storefront/internal/application/cart"
	appinventory "github.com/Zhima-Mochi/corralon-storefront/internal/application/inventory"
	apppayment "github.com/Zhima-Mochi/corralon-storefront/internal/application/payment"
	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/outbox"
	infrapayment "github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("ord-%d", s.n)
}

type world struct {
	bus      *outbox.Bus
	carts    *appcart.Service
	place    *PlaceOrderUseCase
	history  *History
	orders   *memory.OrderRepository
	products *memory.ProductRepository
}

func newWorld(t *testing.T, paymentRate float64) world {
	t.Helper()
	ctx := context.Background()

	products := memory.NewProductRepository()
	require.NoError(t, products.Insert(ctx, &domcatalog.Product{
		ID: "cemento", StoreID: "casa-borda", Title: "Cemento", Category: "construccion",
		Price: decimal.NewFromInt(9000), Stock: 10,
	}))
	require.NoError(t, products.Insert(ctx, &domcatalog.Product{
		ID: "arena", StoreID: "casa-borda", Title: "Arena", Category: "construccion",
		Price: decimal.NewFromInt(500), Stock: 3,
	}))

	bus := outbox.NewBus(nil, outbox.Options{})
	orders := memory.NewOrderRepository()
	carts := appcart.NewService(appcart.NewSessions(memory.NewCartSnapshotRepository(), nil, appcart.SessionOptions{}), products, nil, bus, nil)

	appinventory.NewWorker(bus, appinventory.NewReserveInventoryUseCase(products, bus, nil), nil).Start()
	NewWorker(orders, bus, bus, nil).Start()
	apppayment.NewWorker(bus, apppayment.NewProcessPaymentUseCase(orders, infrapayment.NewSimulator(paymentRate), bus, nil), nil).Start()
	bus.Start(ctx)
	t.Cleanup(func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = bus.Stop(stopCtx)
	})

	rates := ShippingRates{Express: decimal.NewFromInt(6500)}
	return world{
		bus:      bus,
		carts:    carts,
		place:    NewPlaceOrderUseCase(orders, carts, &seqIDs{}, bus, rates, nil),
		history:  NewHistory(orders, nil),
		orders:   orders,
		products: products,
	}
}

func checkoutInput(key string) PlaceOrderInput {
	return PlaceOrderInput{
		IdempotencyKey: key,
		CustomerID:     "user-1",
		SessionID:      "sess-1",
		Shipping:       domain.ShippingExpress,
		PaymentMethod:  domain.PaymentCredit,
		Contact: domain.Contact{
			FullName: "Juan Pérez",
			Phone:    "+54 9 11 1234 5678",
			Address:  "Av. Corrientes 1234",
			Province: "Buenos Aires",
			City:     "CABA",
		},
	}
}

func waitForStatus(t *testing.T, repo *memory.OrderRepository, id string, want domain.Status) *domain.Order {
	t.Helper()
	var got *domain.Order
	require.Eventually(t, func() bool {
		o, err := repo.Get(context.Background(), id)
		if err != nil {
			return false
		}
		got = o
		return o.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return got
}

func TestPlaceOrderHappyPath(t *testing.T) {
	w := newWorld(t, 1)
	ctx := context.Background()

	_, err := w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "cemento", Quantity: 2})
	require.NoError(t, err)
	_, err = w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "arena", Quantity: 1})
	require.NoError(t, err)

	res, err := w.place.Execute(ctx, checkoutInput("key-1"))
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	o := res.Order
	assert.Equal(t, "casa-borda", o.StoreID)
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(18500)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(25000)))

	v, err := w.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.False(t, v.HasItems())

	done := waitForStatus(t, w.orders, o.ID, domain.StatusCompleted)
	assert.Empty(t, done.FailureReason)

	p, err := w.products.Get(ctx, "cemento")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	again, err := w.place.Execute(ctx, checkoutInput("key-1"))
	require.NoError(t, err)
	assert.True(t, again.Replayed)
	assert.Equal(t, o.ID, again.Order.ID)

	list, err := w.history.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = w.history.Get(ctx, "someone-else", o.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlaceOrderInventoryFailure(t *testing.T) {
	w := newWorld(t, 1)
	ctx := context.Background()

	_, err := w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "arena", Quantity: 3})
	require.NoError(t, err)

	// another buyer takes the stock between add and checkout
	p, err := w.products.Get(ctx, "arena")
	require.NoError(t, err)
	p.Stock = 1
	require.NoError(t, w.products.Update(ctx, p))

	res, err := w.place.Execute(ctx, checkoutInput(""))
	require.NoError(t, err)

	failed := waitForStatus(t, w.orders, res.Order.ID, domain.StatusInventoryFailed)
	assert.Equal(t, "insufficient_stock", failed.FailureReason)
}

func TestPlaceOrderPaymentDeclined(t *testing.T) {
	w := newWorld(t, 0)
	ctx := context.Background()

	_, err := w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "cemento", Quantity: 1})
	require.NoError(t, err)

	res, err := w.place.Execute(ctx, checkoutInput(""))
	require.NoError(t, err)

	declined := waitForStatus(t, w.orders, res.Order.ID, domain.StatusPaymentFailed)
	assert.Equal(t, "payment_declined", declined.FailureReason)
}

func TestPlaceOrderRejects(t *testing.T) {
	w := newWorld(t, 1)
	ctx := context.Background()

	_, err := w.place.Execute(ctx, checkoutInput(""))
	assert.ErrorIs(t, err, domcart.ErrEmptyCart)

	noUser := checkoutInput("")
	noUser.CustomerID = ""
	_, err = w.place.Execute(ctx, noUser)
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "cemento", Quantity: 1})
	require.NoError(t, err)

	badContact := checkoutInput("")
	badContact.Contact.Address = ""
	_, err = w.place.Execute(ctx, badContact)
	assert.ErrorIs(t, err, domain.ErrInvalidContact)

	badShipping := checkoutInput("")
	badShipping.Shipping = "drone"
	_, err = w.place.Execute(ctx, badShipping)
	assert.ErrorIs(t, err, domain.ErrInvalidShipping)

	v, err := w.carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, v.HasItems(), "a rejected checkout keeps the cart")
}

func TestStandardShippingIsFree(t *testing.T) {
	w := newWorld(t, 1)
	ctx := context.Background()

	_, err := w.carts.AddItem(ctx, appcart.AddItemInput{SessionID: "sess-1", ProductID: "arena", Quantity: 2})
	require.NoError(t, err)

	in := checkoutInput("")
	in.Shipping = domain.ShippingStandard
	res, err := w.place.Execute(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Order.ShippingCost.IsZero())
	assert.True(t, res.Order.Total.Equal(decimal.NewFromInt(1000)))
}
