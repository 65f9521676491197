package cart

import "github.com/shopspring/decimal"

// Cart is the aggregate of line items and their total. It keeps at most one
// line per product id and recomputes the total before every mutator returns.
//
// Cart is not safe for concurrent use; the session store serializes access.
type Cart struct {
	items []LineItem
	total decimal.Decimal
}

func New() *Cart {
	return &Cart{total: decimal.Zero}
}

// Restore rebuilds a cart from persisted lines. Lines are re-validated and
// duplicates of one product are merged, as AddItem would.
func Restore(items []LineItem) (*Cart, error) {
	c := New()
	for _, item := range items {
		if err := c.AddItem(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AddItem appends item, or merges it into the existing line for the same
// product. A merge keeps the existing line's position and price snapshot.
func (c *Cart) AddItem(item LineItem) error {
	if !item.valid() {
		return ErrInvalidQuantity
	}
	if err := item.product.Validate(); err != nil {
		return err
	}

	if idx := c.indexOf(item.ProductID()); idx >= 0 {
		merged := c.items[idx]
		if err := merged.SetQuantity(merged.quantity + item.quantity); err != nil {
			return err
		}
		c.items[idx] = merged
	} else {
		c.items = append(c.items, item)
	}
	c.recalculate()
	return nil
}

// RemoveItem drops every line for productID. Removing an absent product is a
// no-op; the result reports whether anything was removed.
func (c *Cart) RemoveItem(productID string) bool {
	kept := c.items[:0]
	removed := false
	for _, item := range c.items {
		if item.ProductID() == productID {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	// zero the tail so dropped snapshots are not retained by the backing array
	for i := len(kept); i < len(c.items); i++ {
		c.items[i] = LineItem{}
	}
	c.items = kept
	c.recalculate()
	return removed
}

// UpdateItemQuantity sets the quantity of productID's line. A quantity of
// zero or less removes the line. An absent product is a no-op and reports
// false.
func (c *Cart) UpdateItemQuantity(productID string, quantity int) (bool, error) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return false, nil
	}
	if quantity <= 0 {
		return c.RemoveItem(productID), nil
	}

	updated := c.items[idx]
	if err := updated.SetQuantity(quantity); err != nil {
		return false, err
	}
	c.items[idx] = updated
	c.recalculate()
	return true, nil
}

func (c *Cart) Clear() {
	c.items = nil
	c.recalculate()
}

// CalculateTotal sums the line subtotals without touching the cart.
func (c *Cart) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.subtotal)
	}
	return total
}

func (c *Cart) Total() decimal.Decimal { return c.total }

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Contains(productID string) bool {
	return c.indexOf(productID) >= 0
}

// QuantityOf returns the quantity held for productID, or 0.
func (c *Cart) QuantityOf(productID string) int {
	if idx := c.indexOf(productID); idx >= 0 {
		return c.items[idx].quantity
	}
	return 0
}

// TotalQuantity is the number of units across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.items {
		n += item.quantity
	}
	return n
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items(), total: c.total}
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.items {
		if item.ProductID() == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) recalculate() {
	c.total = c.CalculateTotal()
}
