package cart

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the immutable snapshot of a catalog product taken when it enters
// the cart. Later catalog price changes never reach items already in a cart.
type Product struct {
	ID           string
	Title        string
	UnitPrice    decimal.Decimal
	StockCeiling int // 0 means unknown
	Image        string
	StoreID      string
}

// NewProduct validates the snapshot at the boundary where it enters the cart.
func NewProduct(id, title string, unitPrice decimal.Decimal, stockCeiling int, image, storeID string) (Product, error) {
	p := Product{
		ID:           strings.TrimSpace(id),
		Title:        strings.TrimSpace(title),
		UnitPrice:    unitPrice,
		StockCeiling: stockCeiling,
		Image:        image,
		StoreID:      storeID,
	}
	if err := p.Validate(); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (p Product) Validate() error {
	switch {
	case p.ID == "":
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidProduct)
	case p.UnitPrice.IsNegative():
		return fmt.Errorf("%w: unit price must be zero or greater", ErrInvalidProduct)
	case p.StockCeiling < 0:
		return fmt.Errorf("%w: stock ceiling must be zero or greater", ErrInvalidProduct)
	}
	return nil
}

// Allows reports whether quantity fits under the stock ceiling.
func (p Product) Allows(quantity int) bool {
	return p.StockCeiling == 0 || quantity <= p.StockCeiling
}
