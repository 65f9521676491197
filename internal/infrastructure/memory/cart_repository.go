package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
)

type CartSnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
}

func NewCartSnapshotRepository() *CartSnapshotRepository {
	return &CartSnapshotRepository{
		snapshots: make(map[string]*domain.Snapshot),
	}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.snapshots[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, s *domain.Snapshot) error {
	_ = ctx
	if s == nil || s.SessionID == "" {
		return fmt.Errorf("cart snapshot repository: session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[s.SessionID] = s.Clone()
	return nil
}

func (r *CartSnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, sessionID)
	return nil
}
