package inventory

import "context"

// Repository holds stock. Reserve deducts every line or none of them.
type Repository interface {
	Reserve(ctx context.Context, lines []Line) error
}
