package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func product(t testing.TB, id string, price int64, stock int) Product {
	t.Helper()
	p, err := NewProduct(id, "product "+id, decimal.NewFromInt(price), stock, "", "store-1")
	require.NoError(t, err)
	return p
}

func item(t testing.TB, qty int, p Product) LineItem {
	t.Helper()
	li, err := NewLineItem(qty, p)
	require.NoError(t, err)
	return li
}

func requireTotal(t *testing.T, c *Cart, want int64) {
	t.Helper()
	assert.True(t, c.Total().Equal(decimal.NewFromInt(want)), "total = %s, want %d", c.Total(), want)
	assert.True(t, c.Total().Equal(c.CalculateTotal()))
}

func TestNewLineItemRejectsNonPositiveQuantity(t *testing.T) {
	p := product(t, "p1", 10, 0)
	for _, qty := range []int{0, -1} {
		_, err := NewLineItem(qty, p)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}

func TestLineItemSubtotalFollowsQuantity(t *testing.T) {
	li := item(t, 2, product(t, "p1", 100, 0))
	assert.True(t, li.Subtotal().Equal(decimal.NewFromInt(200)))

	require.NoError(t, li.SetQuantity(5))
	assert.Equal(t, 5, li.Quantity())
	assert.True(t, li.Subtotal().Equal(decimal.NewFromInt(500)))

	assert.ErrorIs(t, li.SetQuantity(0), ErrInvalidQuantity)
	assert.Equal(t, 5, li.Quantity(), "failed update leaves quantity unchanged")
}

func TestLineItemStockCeiling(t *testing.T) {
	p := product(t, "p1", 10, 3)
	_, err := NewLineItem(4, p)
	assert.ErrorIs(t, err, ErrStockExceeded)

	li := item(t, 3, p)
	assert.ErrorIs(t, li.SetQuantity(4), ErrStockExceeded)
}

func TestNewProductValidation(t *testing.T) {
	_, err := NewProduct("", "title", decimal.NewFromInt(1), 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = NewProduct("p1", " ", decimal.NewFromInt(1), 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = NewProduct("p1", "title", decimal.NewFromInt(-1), 0, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
	_, err = NewProduct("p1", "title", decimal.NewFromInt(1), -2, "", "")
	assert.ErrorIs(t, err, ErrInvalidProduct)
}

func TestScenarios(t *testing.T) {
	c := New()

	// A: first add
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 0))))
	assert.Equal(t, 1, c.Len())
	requireTotal(t, c, 50)

	// B: update quantity
	changed, err := c.UpdateItemQuantity("p1", 3)
	require.NoError(t, err)
	assert.True(t, changed)
	items := c.Items()
	assert.Equal(t, 3, items[0].Quantity())
	assert.True(t, items[0].Subtotal().Equal(decimal.NewFromInt(150)))
	requireTotal(t, c, 150)

	// C: remove
	assert.True(t, c.RemoveItem("p1"))
	assert.Equal(t, 0, c.Len())
	requireTotal(t, c, 0)
}

func TestAddSameProductMergesIntoOneLine(t *testing.T) {
	c := New()
	p2 := product(t, "p2", 30, 0)
	require.NoError(t, c.AddItem(item(t, 1, p2)))
	require.NoError(t, c.AddItem(item(t, 1, p2)))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 2, c.Items()[0].Quantity())
	requireTotal(t, c, 60)
}

func TestMergeKeepsOriginalPriceAndPosition(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "a", 10, 0))))
	require.NoError(t, c.AddItem(item(t, 1, product(t, "b", 20, 0))))
	require.NoError(t, c.AddItem(item(t, 2, product(t, "a", 99, 0))))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ProductID())
	assert.Equal(t, 3, items[0].Quantity())
	assert.True(t, items[0].Product().UnitPrice.Equal(decimal.NewFromInt(10)))
	requireTotal(t, c, 50)
}

func TestMergePastStockCeilingLeavesCartUnchanged(t *testing.T) {
	c := New()
	p := product(t, "p1", 10, 3)
	require.NoError(t, c.AddItem(item(t, 2, p)))

	err := c.AddItem(item(t, 2, p))
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, 2, c.QuantityOf("p1"))
	requireTotal(t, c, 20)
}

func TestAddItemRejectsZeroValue(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.AddItem(LineItem{}), ErrInvalidQuantity)
	assert.True(t, c.IsEmpty())
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 0))))
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p2", 30, 0))))

	assert.True(t, c.RemoveItem("p1"))
	before := c.Items()
	assert.False(t, c.RemoveItem("p1"))
	assert.Equal(t, before, c.Items())
	requireTotal(t, c, 30)
}

func TestUpdateToZeroRemovesLine(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 2, product(t, "p1", 50, 0))))

	changed, err := c.UpdateItemQuantity("p1", 0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, c.Contains("p1"))
	for _, li := range c.Items() {
		assert.NotZero(t, li.Quantity())
	}
	requireTotal(t, c, 0)
}

func TestUpdateUnknownProductIsNoop(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 0))))

	changed, err := c.UpdateItemQuantity("missing", 4)
	require.NoError(t, err)
	assert.False(t, changed)
	requireTotal(t, c, 50)
}

func TestUpdateAboveStockCeilingFails(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 2))))

	_, err := c.UpdateItemQuantity("p1", 3)
	assert.ErrorIs(t, err, ErrStockExceeded)
	assert.Equal(t, 1, c.QuantityOf("p1"))
	requireTotal(t, c, 50)
}

func TestTotalRecomputation(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 7, 0))))
	before := c.Total()

	require.NoError(t, c.AddItem(item(t, 2, product(t, "p2", 100, 0))))
	assert.True(t, c.Total().Sub(before).Equal(decimal.NewFromInt(200)))
}

func TestClear(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 0))))
	c.Clear()
	assert.True(t, c.IsEmpty())
	requireTotal(t, c, 0)
}

func TestCalculateTotalIsPure(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 3, product(t, "p1", 5, 0))))
	first := c.CalculateTotal()
	second := c.CalculateTotal()
	assert.True(t, first.Equal(second))
	assert.Equal(t, 1, c.Len())
}

func TestItemsAndCloneAreIsolated(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p1", 50, 0))))

	items := c.Items()
	require.NoError(t, items[0].SetQuantity(9))
	assert.Equal(t, 1, c.QuantityOf("p1"))

	clone := c.Clone()
	clone.Clear()
	assert.Equal(t, 1, c.Len())
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := New()
	require.NoError(t, c.AddItem(item(t, 2, product(t, "p1", 50, 5))))
	require.NoError(t, c.AddItem(item(t, 1, product(t, "p2", 30, 0))))

	snap := SnapshotOf("s1", "store-1", c)
	restored, err := snap.Cart()
	require.NoError(t, err)
	want, got := c.Items(), restored.Items()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Product().ID, got[i].Product().ID)
		assert.Equal(t, want[i].Product().StockCeiling, got[i].Product().StockCeiling)
		assert.Equal(t, want[i].Quantity(), got[i].Quantity())
		assert.True(t, want[i].Subtotal().Equal(got[i].Subtotal()))
	}
	requireTotal(t, restored, 130)
}

func TestRestoreMergesDuplicates(t *testing.T) {
	p := product(t, "p1", 10, 0)
	c, err := Restore([]LineItem{item(t, 1, p), item(t, 2, p)})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.QuantityOf("p1"))
}

func TestCartInvariantsHoldForAnyOperationSequence(t *testing.T) {
	ids := []string{"p1", "p2", "p3", "p4"}
	rapid.Check(t, func(rt *rapid.T) {
		c := New()
		steps := rapid.IntRange(1, 60).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				price := rapid.Int64Range(0, 10_000).Draw(rt, "price")
				stock := rapid.IntRange(0, 20).Draw(rt, "stock")
				qty := rapid.IntRange(1, 10).Draw(rt, "qty")
				p, err := NewProduct(id, "t", decimal.New(price, -2), stock, "", "")
				if err != nil {
					rt.Fatalf("product: %v", err)
				}
				li, err := NewLineItem(qty, p)
				if err != nil {
					continue
				}
				_ = c.AddItem(li)
			case 1:
				c.RemoveItem(id)
			case 2:
				_, _ = c.UpdateItemQuantity(id, rapid.IntRange(-2, 15).Draw(rt, "newQty"))
			case 3:
				if rapid.IntRange(0, 9).Draw(rt, "clearRoll") == 0 {
					c.Clear()
				}
			}

			if !c.Total().Equal(c.CalculateTotal()) {
				rt.Fatalf("total %s != sum of subtotals %s", c.Total(), c.CalculateTotal())
			}
			seen := map[string]bool{}
			for _, li := range c.Items() {
				if li.Quantity() <= 0 {
					rt.Fatalf("line %s stored with quantity %d", li.ProductID(), li.Quantity())
				}
				if !li.Product().Allows(li.Quantity()) {
					rt.Fatalf("line %s exceeds stock ceiling", li.ProductID())
				}
				if seen[li.ProductID()] {
					rt.Fatalf("duplicate line for %s", li.ProductID())
				}
				seen[li.ProductID()] = true
			}
		}
	})
}
