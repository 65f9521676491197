package inventory

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("inventory: product not found")
	ErrInvalidQuantity   = errors.New("inventory: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("inventory: insufficient stock")
)

// Line asks for Quantity units of one product.
type Line struct {
	ProductID string
	Quantity  int
}

// ShortageError names the product that could not be covered.
type ShortageError struct {
	ProductID string
	Requested int
	Available int
}

func (e *ShortageError) Error() string {
	return fmt.Sprintf("inventory: product %s has %d units, %d requested", e.ProductID, e.Available, e.Requested)
}

func (e *ShortageError) Unwrap() error { return ErrInsufficientStock }

// Normalize merges lines for the same product and rejects empty ids and
// non-positive quantities. Order of first appearance is preserved.
func Normalize(lines []Line) ([]Line, error) {
	out := make([]Line, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, l := range lines {
		id := strings.TrimSpace(l.ProductID)
		if id == "" {
			return nil, ErrNotFound
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[id]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[id] = len(out)
		out = append(out, Line{ProductID: id, Quantity: l.Quantity})
	}
	return out, nil
}
