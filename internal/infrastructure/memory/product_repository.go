package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
)

// ProductRepository keeps the catalog in memory. It is also the inventory:
// Reserve deducts from Product.Stock.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *ProductRepository) List(ctx context.Context, q domain.Query) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	all := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		all = append(all, p.Clone())
	}
	r.mu.RUnlock()

	// map order is random; give Apply a stable base
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return domain.Apply(all, q), nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, p.ID)
	}
	r.products[p.ID] = p.Clone()
	return nil
}

// Upsert inserts or replaces p. Used by seeding.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	_ = ctx
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; !exists {
		return domain.ErrNotFound
	}
	r.products[p.ID] = p.Clone()
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[id]; !exists {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

// Reserve deducts every line or none. Checks happen before any write, under
// one lock.
func (r *ProductRepository) Reserve(ctx context.Context, lines []dominv.Line) error {
	_ = ctx
	lines, err := dominv.Normalize(lines)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, l := range lines {
		p, ok := r.products[l.ProductID]
		if !ok {
			return fmt.Errorf("%w: %s", dominv.ErrNotFound, l.ProductID)
		}
		if p.Stock < l.Quantity {
			return &dominv.ShortageError{ProductID: l.ProductID, Requested: l.Quantity, Available: p.Stock}
		}
	}
	now := time.Now().UTC()
	for _, l := range lines {
		p := r.products[l.ProductID]
		p.Stock -= l.Quantity
		p.UpdatedAt = now
	}
	return nil
}
