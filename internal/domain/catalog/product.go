package catalog

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrAlreadyExists     = errors.New("catalog: product already exists")
	ErrInvalidProduct    = errors.New("catalog: invalid product")
	ErrForbidden         = errors.New("catalog: product belongs to another seller")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
)

// LowStockThreshold is the highest stock count still reported as low stock.
const LowStockThreshold = 10

type StockStatus string

const (
	StockOut StockStatus = "out_of_stock"
	StockLow StockStatus = "low_stock"
	StockIn  StockStatus = "in_stock"
)

// Product is a catalog document as sellers manage it.
type Product struct {
	ID                 string
	StoreID            string
	OwnerID            string
	Title              string
	Description        string
	Category           string
	Brand              string
	SKU                string
	Price              decimal.Decimal
	DiscountPercentage float64
	Rating             float64
	Stock              int
	Tags               []string
	Images             []string
	Thumbnail          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (p *Product) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		problems = append(problems, "category is required")
	}
	if p.Price.IsNegative() {
		problems = append(problems, "price must be zero or greater")
	}
	if p.Stock < 0 {
		problems = append(problems, "stock must be zero or greater")
	}
	if p.DiscountPercentage < 0 || p.DiscountPercentage > 100 {
		problems = append(problems, "discount percentage must be between 0 and 100")
	}
	if p.Rating < 0 || p.Rating > 5 {
		problems = append(problems, "rating must be between 0 and 5")
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func (p *Product) StockStatus() StockStatus {
	switch {
	case p.Stock <= 0:
		return StockOut
	case p.Stock <= LowStockThreshold:
		return StockLow
	default:
		return StockIn
	}
}

// Image returns the picture shown for the product in listings.
func (p *Product) Image() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

// OwnedBy reports whether the seller identified by ownerID may manage p.
func (p *Product) OwnedBy(ownerID string) bool {
	return ownerID != "" && p.OwnerID == ownerID
}

func (p *Product) DeductStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Tags = append([]string(nil), p.Tags...)
	clone.Images = append([]string(nil), p.Images...)
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

// ValidationError lists every problem found on a product document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "catalog: invalid product: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidProduct }
