package catalog

import "github.com/shopspring/decimal"

// Stats summarizes a seller's products for the dashboard cards.
type Stats struct {
	Products       int
	OutOfStock     int
	LowStock       int
	Units          int
	InventoryValue decimal.Decimal
}

func Summarize(products []*Product) Stats {
	s := Stats{InventoryValue: decimal.Zero}
	for _, p := range products {
		s.Products++
		switch p.StockStatus() {
		case StockOut:
			s.OutOfStock++
		case StockLow:
			s.LowStock++
		}
		if p.Stock > 0 {
			s.Units += p.Stock
			s.InventoryValue = s.InventoryValue.Add(p.Price.Mul(decimal.NewFromInt(int64(p.Stock))))
		}
	}
	return s
}
