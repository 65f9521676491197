package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
)

type StorefrontRepository struct {
	mu     sync.RWMutex
	stores map[string]*domain.Storefront
}

func NewStorefrontRepository() *StorefrontRepository {
	return &StorefrontRepository{
		stores: make(map[string]*domain.Storefront),
	}
}

// List returns every storefront ordered by name.
func (r *StorefrontRepository) List(ctx context.Context) ([]*domain.Storefront, error) {
	_ = ctx

	r.mu.RLock()
	out := make([]*domain.Storefront, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, s.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *StorefrontRepository) Get(ctx context.Context, id string) (*domain.Storefront, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *StorefrontRepository) Save(ctx context.Context, s *domain.Storefront) error {
	_ = ctx
	if s == nil || s.ID == "" {
		return fmt.Errorf("storefront repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stores[s.ID] = s.Clone()
	return nil
}
