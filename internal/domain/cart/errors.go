package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
	ErrStockExceeded   = errors.New("cart: quantity exceeds available stock")
	ErrInvalidProduct  = errors.New("cart: invalid product")
	ErrStoreMismatch   = errors.New("cart: product belongs to a different store")
	ErrCartNotEmpty    = errors.New("cart: cart has items, confirmation required")
	ErrEmptyCart       = errors.New("cart: cart is empty")
	ErrNotFound        = errors.New("cart: snapshot not found")
)
