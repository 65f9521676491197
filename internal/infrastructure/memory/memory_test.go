package memory

import (
	"context"
	"testing"
	"time"

	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, stock int) *domcatalog.Product {
	return &domcatalog.Product{
		ID: id, StoreID: "casa-borda", OwnerID: "seller-1", Title: "Producto " + id,
		Category: "cementos", Price: decimal.NewFromInt(1000), Stock: stock,
	}
}

func TestProductRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	require.NoError(t, repo.Insert(ctx, product("cem", 10)))
	assert.ErrorIs(t, repo.Insert(ctx, product("cem", 10)), domcatalog.ErrAlreadyExists)

	got, err := repo.Get(ctx, "cem")
	require.NoError(t, err)
	got.Stock = 0

	again, err := repo.Get(ctx, "cem")
	require.NoError(t, err)
	assert.Equal(t, 10, again.Stock)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), domcatalog.ErrNotFound)
}

func TestProductRepositoryReserveAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository()
	require.NoError(t, repo.Insert(ctx, product("a", 5)))
	require.NoError(t, repo.Insert(ctx, product("b", 1)))

	err := repo.Reserve(ctx, []dominv.Line{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 2}})
	var shortage *dominv.ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "b", shortage.ProductID)

	a, _ := repo.Get(ctx, "a")
	assert.Equal(t, 5, a.Stock)

	require.NoError(t, repo.Reserve(ctx, []dominv.Line{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}))
	a, _ = repo.Get(ctx, "a")
	b, _ := repo.Get(ctx, "b")
	assert.Equal(t, 3, a.Stock)
	assert.Equal(t, 0, b.Stock)
}

func newOrder(t *testing.T, id, customer, key string, created time.Time) *domorder.Order {
	t.Helper()
	o, err := domorder.New(domorder.Draft{
		ID: id, IdempotencyKey: key, CustomerID: customer, StoreID: "casa-borda",
		Lines: []domorder.Line{
			{ProductID: "cem", Title: "Cemento", UnitPrice: decimal.NewFromInt(9500), Quantity: 1},
		},
		Shipping:      domorder.ShippingStandard,
		PaymentMethod: domorder.PaymentCash,
		Contact:       domorder.Contact{FullName: "Ana", Phone: "351", Address: "San Martín 10", City: "Córdoba"},
	})
	require.NoError(t, err)
	o.CreatedAt = created
	return o
}

func TestOrderRepositoryIdempotencyIsPerCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	now := time.Now().UTC()

	require.NoError(t, repo.Insert(ctx, newOrder(t, "o1", "ana", "k1", now)))
	assert.ErrorIs(t, repo.Insert(ctx, newOrder(t, "o2", "ana", "k1", now)), domorder.ErrConflict)
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o3", "beto", "k1", now.Add(time.Second))))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o4", "ana", "", now.Add(time.Minute))))

	found, err := repo.FindByIdempotency(ctx, "ana", "k1")
	require.NoError(t, err)
	assert.Equal(t, "o1", found.ID)

	_, err = repo.FindByIdempotency(ctx, "ana", "")
	assert.ErrorIs(t, err, domorder.ErrNotFound)

	list, err := repo.ListByCustomer(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "o4", list[0].ID)
}
