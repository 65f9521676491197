package catalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seqIDs struct{ n int }

func (s *seqIDs) NewID() string {
	s.n++
	return fmt.Sprintf("prod-%d", s.n)
}

func newService(t *testing.T) *Service {
	t.Helper()
	ctx := context.Background()
	stores := memory.NewStorefrontRepository()
	require.NoError(t, stores.Save(ctx, &domstore.Storefront{ID: "casa-borda", Name: "Casa Borda"}))
	return NewService(memory.NewProductRepository(), stores, &seqIDs{}, nil)
}

func input(title, price string, stock int) ProductInput {
	return ProductInput{
		StoreID:  "casa-borda",
		Title:    title,
		Category: "Construccion",
		Price:    price,
		Stock:    stock,
	}
}

func TestDashboardLifecycle(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, "seller-1", input("Cemento", "1.234,50", 8))
	require.NoError(t, err)
	assert.Equal(t, "prod-1", p.ID)
	assert.Equal(t, "seller-1", p.OwnerID)
	assert.Equal(t, "construccion", p.Category)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("1234.50")))
	assert.Equal(t, domcatalog.StockLow, p.StockStatus())

	_, err = svc.CreateProduct(ctx, "seller-2", input("Arena", "100", 0))
	require.NoError(t, err)

	own, err := svc.OwnProducts(ctx, "seller-1")
	require.NoError(t, err)
	require.Len(t, own, 1)

	_, err = svc.UpdateProduct(ctx, "seller-2", p.ID, input("Robado", "1", 1))
	assert.ErrorIs(t, err, domcatalog.ErrForbidden)

	upd := input("Cemento Avellaneda", "2000", 50)
	upd.StoreID = "other-store"
	updated, err := svc.UpdateProduct(ctx, "seller-1", p.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, "casa-borda", updated.StoreID)
	assert.Equal(t, domcatalog.StockIn, updated.StockStatus())

	stats, err := svc.Stats(ctx, "seller-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Products)
	assert.True(t, stats.InventoryValue.Equal(decimal.NewFromInt(100000)))

	assert.ErrorIs(t, svc.DeleteProduct(ctx, "seller-2", p.ID), domcatalog.ErrForbidden)
	require.NoError(t, svc.DeleteProduct(ctx, "seller-1", p.ID))
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domcatalog.ErrNotFound)
}

type fixedIDs struct{}

func (fixedIDs) NewID() string { return "prod-fixed" }

func TestCreateProductDuplicateIDIsConflict(t *testing.T) {
	ctx := context.Background()
	stores := memory.NewStorefrontRepository()
	require.NoError(t, stores.Save(ctx, &domstore.Storefront{ID: "casa-borda", Name: "Casa Borda"}))
	svc := NewService(memory.NewProductRepository(), stores, fixedIDs{}, nil)

	_, err := svc.CreateProduct(ctx, "seller-1", input("Cemento", "10", 1))
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, "seller-1", input("Cal", "10", 1))
	assert.ErrorIs(t, err, domcatalog.ErrAlreadyExists)
	assert.NotErrorIs(t, err, application.ErrRepository)
}

func TestCreateProductValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, "", input("Cemento", "10", 1))
	assert.ErrorIs(t, err, application.ErrUnauthorized)

	_, err = svc.CreateProduct(ctx, "seller-1", input("", "10", 1))
	assert.ErrorIs(t, err, domcatalog.ErrInvalidProduct)

	_, err = svc.CreateProduct(ctx, "seller-1", input("Cemento", "diez", 1))
	assert.ErrorIs(t, err, application.ErrValidation)

	bad := input("Cemento", "10", 1)
	bad.StoreID = "nowhere"
	_, err = svc.CreateProduct(ctx, "seller-1", bad)
	assert.ErrorIs(t, err, domstore.ErrNotFound)
}

func TestListAndCategories(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, in := range []ProductInput{
		{StoreID: "casa-borda", Title: "Taladro", Category: "herramientas", Price: "50000", Stock: 3},
		{StoreID: "casa-borda", Title: "Cemento", Category: "construccion", Price: "9000", Stock: 40},
		{StoreID: "casa-borda", Title: "Martillo", Category: "herramientas", Price: "12000", Stock: 0},
	} {
		_, err := svc.CreateProduct(ctx, "seller-1", in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, domcatalog.Query{Categories: []string{"Herramientas"}, Sort: domcatalog.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Martillo", got[0].Title)
	assert.Equal(t, "Taladro", got[1].Title)

	cats, err := svc.Categories(ctx, "casa-borda")
	require.NoError(t, err)
	assert.Equal(t, []string{"Construccion", "Herramientas"}, cats)
}

func TestParsePrice(t *testing.T) {
	tests := map[string]string{
		"1234.5":     "1234.5",
		"$ 1.234,50": "1234.5",
		"6500":       "6500",
		"0,99":       "0.99",
	}
	for in, want := range tests {
		got, err := parsePrice(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), in)
	}

	_, err := parsePrice("")
	assert.ErrorIs(t, err, application.ErrValidation)
}
