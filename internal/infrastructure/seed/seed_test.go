package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
stores:
  - id: casa-borda
    name: Corralón Casa Borda
    address: Av. Colón 1200
    is_open: true
    payment_methods: [cash, transfer]
    opening_hours:
      monday: "08:00 - 18:00"
products:
  - id: cem-50
    store_id: casa-borda
    owner_id: seller-1
    title: Cemento Loma Negra 50kg
    category: cementos
    price: "9500.50"
    stock: 40
    tags: [obra, gris]
`

func TestLoadAndApply(t *testing.T) {
	f, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, f.Stores, 1)
	assert.Equal(t, "08:00 - 18:00", f.Stores[0].OpeningHours.Monday)
	assert.Equal(t, []string{"cash", "transfer"}, f.Stores[0].PaymentMethods)

	ctx := context.Background()
	stores := memory.NewStorefrontRepository()
	products := memory.NewProductRepository()
	res, err := Apply(ctx, f, stores, products)
	require.NoError(t, err)
	assert.Equal(t, Result{Stores: 1, Products: 1}, res)

	p, err := products.Get(ctx, "cem-50")
	require.NoError(t, err)
	assert.True(t, p.Price.Equal(decimal.RequireFromString("9500.5")))
	assert.Equal(t, catalog.StockIn, p.StockStatus())
	assert.False(t, p.CreatedAt.IsZero())

	s, err := stores.Get(ctx, "casa-borda")
	require.NoError(t, err)
	assert.True(t, s.IsOpen)

	// second run is an upsert, not a duplicate
	_, err = Apply(ctx, f, stores, products)
	require.NoError(t, err)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "stores:\n  - id: a\n    name: A\n    colour: red\n",
		"unknown store": "stores: []\nproducts:\n  - id: p\n    store_id: x\n    title: T\n    category: c\n    price: \"1\"\n",
		"bad price":     "stores:\n  - id: a\n    name: A\nproducts:\n  - id: p\n    store_id: a\n    title: T\n    category: c\n    price: abc\n",
		"store no name": "stores:\n  - id: a\n",
		"invalid":       "stores:\n  - id: a\n    name: A\nproducts:\n  - id: p\n    store_id: a\n    category: c\n    price: \"1\"\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Stores)
}
