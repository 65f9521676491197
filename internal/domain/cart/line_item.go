package cart

import "github.com/shopspring/decimal"

// LineItem is a quantity of one product. Its subtotal is derived and is only
// ever recomputed, never set.
type LineItem struct {
	product  Product
	quantity int
	subtotal decimal.Decimal
}

func NewLineItem(quantity int, product Product) (LineItem, error) {
	if err := product.Validate(); err != nil {
		return LineItem{}, err
	}
	item := LineItem{product: product}
	if err := item.SetQuantity(quantity); err != nil {
		return LineItem{}, err
	}
	return item, nil
}

// SetQuantity fails with ErrInvalidQuantity for non-positive values; callers
// that want removal must route that case to Cart.RemoveItem.
func (i *LineItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !i.product.Allows(quantity) {
		return ErrStockExceeded
	}
	i.quantity = quantity
	i.subtotal = i.product.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return nil
}

func (i LineItem) Product() Product          { return i.product }
func (i LineItem) ProductID() string         { return i.product.ID }
func (i LineItem) Quantity() int             { return i.quantity }
func (i LineItem) Subtotal() decimal.Decimal { return i.subtotal }

func (i LineItem) valid() bool {
	return i.quantity > 0 && i.product.ID != ""
}
