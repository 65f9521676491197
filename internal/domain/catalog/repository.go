package catalog

import "context"

// Repository stores product documents. List may push down any part of the
// query it supports; callers apply the query again in memory.
type Repository interface {
	List(ctx context.Context, q Query) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
