package sqlstore

import (
	"context"
	"testing"
	"time"

	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "x")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))

	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}

func TestMigrateIsRepeatable(t *testing.T) {
	db := openTest(t)
	assert.NoError(t, db.Migrate(context.Background()))
}

func product(id, store string, price int64, stock int) *domcatalog.Product {
	now := time.Now().UTC()
	return &domcatalog.Product{
		ID: id, StoreID: store, OwnerID: "seller-" + store, Title: "Producto " + id, Category: "cementos",
		Price: decimal.NewFromInt(price), Stock: stock, Tags: []string{"obra"}, CreatedAt: now, UpdatedAt: now,
	}
}

func TestProductRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(openTest(t))

	p := product("cem", "casa-borda", 9500, 40)
	p.Price = decimal.RequireFromString("9500.50")
	require.NoError(t, repo.Insert(ctx, p))
	assert.ErrorIs(t, repo.Insert(ctx, p), domcatalog.ErrAlreadyExists)

	got, err := repo.Get(ctx, "cem")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(p.Price), got.Price.String())
	assert.Equal(t, []string{"obra"}, got.Tags)
	assert.Equal(t, "seller-casa-borda", got.OwnerID)
	assert.True(t, got.CreatedAt.Equal(p.CreatedAt))

	got.Stock = 12
	got.Title = "Cemento 50kg"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.Get(ctx, "cem")
	require.NoError(t, err)
	assert.Equal(t, 12, again.Stock)
	assert.Equal(t, "Cemento 50kg", again.Title)

	require.NoError(t, repo.Delete(ctx, "cem"))
	_, err = repo.Get(ctx, "cem")
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "cem"), domcatalog.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, p), domcatalog.ErrNotFound)
}

func TestProductRepositoryListFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(openTest(t))
	require.NoError(t, repo.Insert(ctx, product("a", "casa-borda", 300, 1)))
	require.NoError(t, repo.Insert(ctx, product("b", "casa-borda", 100, 1)))
	require.NoError(t, repo.Insert(ctx, product("c", "colorama", 200, 1)))

	all, err := repo.List(ctx, domcatalog.Query{Sort: domcatalog.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	store, err := repo.List(ctx, domcatalog.Query{StoreID: "colorama"})
	require.NoError(t, err)
	require.Len(t, store, 1)
	assert.Equal(t, "c", store[0].ID)

	owned, err := repo.List(ctx, domcatalog.Query{OwnerID: "seller-casa-borda"})
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}

func TestProductRepositoryUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(openTest(t))
	require.NoError(t, repo.Upsert(ctx, product("a", "casa-borda", 300, 1)))
	p := product("a", "casa-borda", 350, 9)
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 9, got.Stock)
	assert.True(t, got.Price.Equal(decimal.NewFromInt(350)))
}

func TestReserveIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(openTest(t))
	require.NoError(t, repo.Insert(ctx, product("a", "s", 1, 5)))
	require.NoError(t, repo.Insert(ctx, product("b", "s", 1, 1)))

	err := repo.Reserve(ctx, []dominv.Line{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 3}})
	require.ErrorIs(t, err, dominv.ErrInsufficientStock)
	var shortage *dominv.ShortageError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, "b", shortage.ProductID)
	assert.Equal(t, 1, shortage.Available)

	a, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 5, a.Stock, "rolled back")

	require.NoError(t, repo.Reserve(ctx, []dominv.Line{{ProductID: "a", Quantity: 2}, {ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 1}}))
	a, _ = repo.Get(ctx, "a")
	b, _ := repo.Get(ctx, "b")
	assert.Equal(t, 2, a.Stock)
	assert.Equal(t, 0, b.Stock)

	assert.ErrorIs(t, repo.Reserve(ctx, []dominv.Line{{ProductID: "zzz", Quantity: 1}}), dominv.ErrNotFound)
}

func newOrder(t *testing.T, id, customer, key string, created time.Time) *domorder.Order {
	t.Helper()
	o, err := domorder.New(domorder.Draft{
		ID: id, IdempotencyKey: key, CustomerID: customer, StoreID: "casa-borda",
		Lines: []domorder.Line{
			{ProductID: "cem", Title: "Cemento", UnitPrice: decimal.NewFromInt(9500), Quantity: 2},
		},
		Shipping:      domorder.ShippingExpress,
		ShippingCost:  decimal.NewFromInt(6500),
		PaymentMethod: domorder.PaymentCash,
		Contact:       domorder.Contact{FullName: "Ana", Phone: "351", Address: "San Martín 10", City: "Córdoba"},
	})
	require.NoError(t, err)
	o.CreatedAt = created
	o.UpdatedAt = created
	return o
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTest(t))
	o := newOrder(t, "o-1", "ana", "k-1", time.Now().UTC())
	require.NoError(t, repo.Insert(ctx, o))

	got, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusPending, got.Status)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(25500)), got.Total.String())
	require.Len(t, got.Lines, 1)
	assert.True(t, got.Lines[0].Subtotal.Equal(decimal.NewFromInt(19000)))
	assert.Equal(t, o.Contact, got.Contact)
	assert.Equal(t, domorder.ShippingExpress, got.Shipping)

	// a loaded order keeps transitioning
	require.NoError(t, got.InventoryReserved())
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.Get(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domorder.StatusInventoryReserved, again.Status)
	require.NoError(t, again.PaymentSucceeded())

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domorder.ErrNotFound)
}

func TestOrderRepositoryIdempotencyIsPerCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTest(t))
	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o-1", "ana", "k", now)))
	assert.ErrorIs(t, repo.Insert(ctx, newOrder(t, "o-2", "ana", "k", now)), domorder.ErrConflict)
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o-3", "bruno", "k", now)))
	// empty keys never collide
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o-4", "ana", "", now)))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "o-5", "ana", "", now)))

	found, err := repo.FindByIdempotency(ctx, "bruno", "k")
	require.NoError(t, err)
	assert.Equal(t, "o-3", found.ID)
	_, err = repo.FindByIdempotency(ctx, "ana", "")
	assert.ErrorIs(t, err, domorder.ErrNotFound)
}

func TestOrderRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository(openTest(t))
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Insert(ctx, newOrder(t, "old", "ana", "", base)))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "new", "ana", "", base.Add(1500*time.Millisecond))))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "mid", "ana", "", base.Add(120*time.Millisecond))))
	require.NoError(t, repo.Insert(ctx, newOrder(t, "other", "bruno", "", base)))

	list, err := repo.ListByCustomer(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestCartSnapshotRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewCartSnapshotRepository(openTest(t))

	_, err := repo.Load(ctx, "s-1")
	assert.ErrorIs(t, err, domcart.ErrNotFound)

	snap := &domcart.Snapshot{
		SessionID: "s-1",
		StoreID:   "casa-borda",
		Lines: []domcart.Line{{
			ProductID: "cem", Title: "Cemento", UnitPrice: decimal.NewFromInt(9500),
			StockCeiling: 40, StoreID: "casa-borda", Quantity: 2,
		}},
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, snap))
	snap.Lines[0].Quantity = 3
	require.NoError(t, repo.Save(ctx, snap))

	got, err := repo.Load(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "casa-borda", got.StoreID)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, 3, got.Lines[0].Quantity)
	assert.True(t, got.Lines[0].UnitPrice.Equal(decimal.NewFromInt(9500)))

	c, err := got.Cart()
	require.NoError(t, err)
	assert.True(t, c.CalculateTotal().Equal(decimal.NewFromInt(28500)))

	require.NoError(t, repo.Delete(ctx, "s-1"))
	_, err = repo.Load(ctx, "s-1")
	assert.ErrorIs(t, err, domcart.ErrNotFound)
}

func TestStorefrontRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewStorefrontRepository(openTest(t))

	require.NoError(t, repo.Save(ctx, &domstore.Storefront{ID: "z", Name: "Corralón Zeta", Tags: []string{"arena"}}))
	require.NoError(t, repo.Save(ctx, &domstore.Storefront{ID: "a", Name: "Amoblamientos", IsOpen: true}))
	require.NoError(t, repo.Save(ctx, &domstore.Storefront{ID: "z", Name: "Bloques Zeta", Tags: []string{"bloques"}}))
	assert.Error(t, repo.Save(ctx, &domstore.Storefront{ID: "x"}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amoblamientos", list[0].Name)
	assert.Equal(t, []string{"bloques"}, list[1].Tags)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, domstore.ErrNotFound)
}
