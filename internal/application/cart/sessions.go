package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability/logctx"
)

const defaultIdleTTL = 30 * time.Minute

type SessionOptions struct {
	// IdleTTL is how long a Store may go unused before Sweep persists and
	// evicts it. Zero means 30 minutes.
	IdleTTL time.Duration
}

// Sessions is the registry of live Stores, one per session id. A Store is
// created (or restored from its snapshot) on first mutation and torn down
// by Close or by Sweep once idle.
type Sessions struct {
	mu        sync.RWMutex
	stores    map[string]*Store
	snapshots domcart.SnapshotRepository
	idleTTL   time.Duration
	now       func() time.Time
	active    observability.Gauge // active_cart_sessions
	log       observability.Logger
}

// NewSessions builds a registry. snapshots may be nil, in which case carts
// live only as long as the process.
func NewSessions(snapshots domcart.SnapshotRepository, tel observability.Observability, opts SessionOptions) *Sessions {
	if tel == nil {
		tel = observability.Nop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = defaultIdleTTL
	}
	return &Sessions{
		stores:    make(map[string]*Store),
		snapshots: snapshots,
		idleTTL:   opts.IdleTTL,
		now:       time.Now,
		active:    tel.Metrics().Gauge(observability.MActiveCartSessions),
		log:       tel.Logger().With(observability.F("component", "cart_sessions")),
	}
}

// Open returns the live Store of sessionID, restoring it from the snapshot
// repository the first time it is seen. While a Store of the same id is
// being closed, Open waits for its final snapshot before restoring.
func (r *Sessions) Open(ctx context.Context, sessionID string) (*Store, error) {
	for {
		if s, ok := r.Lookup(sessionID); ok {
			if s.acquire(r.now()) {
				return s, nil
			}
			if err := r.awaitRelease(ctx, s); err != nil {
				return nil, err
			}
			continue
		}

		loaded, err := r.load(ctx, sessionID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if _, ok := r.stores[sessionID]; ok {
			// lost the race; go through the live entry
			r.mu.Unlock()
			continue
		}
		loaded.seen = r.now()
		r.stores[sessionID] = loaded
		r.active.Add(1)
		r.mu.Unlock()
		return loaded, nil
	}
}

// View returns the cart of sessionID without registering a Store for it:
// an unknown session reads as its snapshot, or as an empty cart.
func (r *Sessions) View(ctx context.Context, sessionID string) (View, error) {
	for {
		s, ok := r.Lookup(sessionID)
		if !ok {
			break
		}
		if s.acquire(r.now()) {
			return s.View(), nil
		}
		if err := r.awaitRelease(ctx, s); err != nil {
			return View{}, err
		}
	}

	loaded, err := r.load(ctx, sessionID)
	if err != nil {
		return View{}, err
	}
	return loaded.View(), nil
}

func (r *Sessions) Lookup(sessionID string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// Persist writes the current snapshot of s. An empty cart has nothing worth
// keeping, so its snapshot is deleted instead. A closed Store is skipped:
// its final snapshot was written by Close.
func (r *Sessions) Persist(ctx context.Context, s *Store) error {
	if r.snapshots == nil || s == nil {
		return nil
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if s.isClosed() {
		return nil
	}
	return r.save(ctx, s.Snapshot())
}

// Close tears the session down. The final snapshot is saved before the id
// can be opened again, so a later Open gets the cart back. Closing an
// unknown session is a no-op.
func (r *Sessions) Close(ctx context.Context, sessionID string) error {
	s, ok := r.Lookup(sessionID)
	if !ok {
		return nil
	}
	closed, err := r.retire(ctx, s, time.Time{})
	if !closed {
		// someone else is closing it; wait for them to finish
		return r.awaitRelease(ctx, s)
	}
	return err
}

// Sweep persists and evicts every Store unused for longer than the idle TTL.
// It returns how many were evicted.
func (r *Sessions) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.RLock()
	idle := make([]*Store, 0)
	for _, s := range r.stores {
		if s.idleSince(cutoff) {
			idle = append(idle, s)
		}
	}
	r.mu.RUnlock()

	var (
		evicted int
		errs    []error
	)
	for _, s := range idle {
		closed, err := r.retire(ctx, s, cutoff)
		if closed {
			evicted++
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	if evicted > 0 {
		r.log.Info("cart_sessions_evicted",
			observability.F("evicted", evicted),
			observability.F("idle_ttl", r.idleTTL.String()),
		)
	}
	return evicted, errors.Join(errs...)
}

// Run sweeps every interval until ctx is done.
func (r *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				r.log.Warn("cart_sessions_sweep_failed", observability.F("error", err.Error()))
			}
		}
	}
}

// CloseAll tears every session down, persisting what it can.
func (r *Sessions) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]string, 0, len(r.stores))
	for id := range r.stores {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	var errs []error
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Sessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// retire closes s if closeIf allows it, writes its final snapshot and only
// then drops it from the registry and releases waiters. It reports whether
// this call did the closing.
func (r *Sessions) retire(ctx context.Context, s *Store, notSeenSince time.Time) (bool, error) {
	s.saveMu.Lock()
	snap, ok := s.closeIf(notSeenSince)
	if !ok {
		s.saveMu.Unlock()
		return false, nil
	}
	var err error
	if r.snapshots != nil {
		err = r.save(ctx, snap)
	}
	s.saveMu.Unlock()

	r.mu.Lock()
	if r.stores[s.sessionID] == s {
		delete(r.stores, s.sessionID)
		r.active.Add(-1)
	}
	r.mu.Unlock()
	close(s.released)
	return true, err
}

func (r *Sessions) awaitRelease(ctx context.Context, s *Store) error {
	select {
	case <-s.released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Sessions) load(ctx context.Context, sessionID string) (*Store, error) {
	if r.snapshots == nil {
		return NewStore(sessionID), nil
	}
	snap, err := r.snapshots.Load(ctx, sessionID)
	switch {
	case errors.Is(err, domcart.ErrNotFound):
		return NewStore(sessionID), nil
	case err != nil:
		return nil, fmt.Errorf("cart: load snapshot: %w", err)
	}

	s, err := restoreStore(snap)
	if err != nil {
		// a snapshot that no longer validates is dropped, not fatal
		logctx.FromOr(ctx, r.log).Warn("cart_snapshot_discarded",
			observability.F("session_id", sessionID),
			observability.F("error", err.Error()),
		)
		return NewStore(sessionID), nil
	}
	return s, nil
}

func (r *Sessions) save(ctx context.Context, snap *domcart.Snapshot) error {
	if len(snap.Lines) == 0 {
		if err := r.snapshots.Delete(ctx, snap.SessionID); err != nil {
			return fmt.Errorf("cart: delete snapshot: %w", err)
		}
		return nil
	}
	if err := r.snapshots.Save(ctx, snap); err != nil {
		return fmt.Errorf("cart: save snapshot: %w", err)
	}
	return nil
}
