package cart

import (
	"errors"
	"sync"
	"time"

	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	"github.com/shopspring/decimal"
)

var ErrSessionClosed = errors.New("cart: session closed")

// LastAdded is the "item just added" fact. Seq grows with every add so a
// client can tell two adds of the same product apart.
type LastAdded struct {
	ProductID string
	Quantity  int
	Seq       uint64
	At        time.Time
}

// View is a read-only copy of a Store at one point in time.
type View struct {
	SessionID string
	StoreID   string
	Items     []domcart.LineItem
	Total     decimal.Decimal
	Units     int
	LastAdded *LastAdded
	UpdatedAt time.Time
}

func (v View) HasItems() bool { return len(v.Items) > 0 }

// Store owns the live cart of one session. Every method holds mu for the
// whole mutation, so the cart total is never observed stale.
type Store struct {
	mu        sync.Mutex
	sessionID string
	storeID   string
	cart      *domcart.Cart
	lastAdded *LastAdded
	seq       uint64
	updatedAt time.Time
	seen      time.Time
	closed    bool

	// saveMu orders snapshot writes: a snapshot is taken and written under
	// it, so a later write always carries a later state.
	saveMu sync.Mutex
	// released is closed once a closed Store has left its registry.
	released chan struct{}
}

func NewStore(sessionID string) *Store {
	now := time.Now().UTC()
	return &Store{
		sessionID: sessionID,
		cart:      domcart.New(),
		updatedAt: now,
		seen:      now,
		released:  make(chan struct{}),
	}
}

func restoreStore(snap *domcart.Snapshot) (*Store, error) {
	c, err := snap.Cart()
	if err != nil {
		return nil, err
	}
	return &Store{
		sessionID: snap.SessionID,
		storeID:   snap.StoreID,
		cart:      c,
		updatedAt: snap.UpdatedAt,
		seen:      time.Now().UTC(),
		released:  make(chan struct{}),
	}, nil
}

func (s *Store) SessionID() string { return s.sessionID }

// AddItem merges item into the cart and records the LastAdded fact. The
// returned event is for the caller to publish.
func (s *Store) AddItem(item domcart.LineItem) (domcart.ItemAddedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domcart.ItemAddedEvent{}, ErrSessionClosed
	}

	productStore := item.Product().StoreID
	if !s.cart.IsEmpty() && s.storeID != "" && productStore != "" && productStore != s.storeID {
		return domcart.ItemAddedEvent{}, domcart.ErrStoreMismatch
	}
	if err := s.cart.AddItem(item); err != nil {
		return domcart.ItemAddedEvent{}, err
	}
	if productStore != "" {
		s.storeID = productStore
	}

	s.seq++
	now := time.Now().UTC()
	s.lastAdded = &LastAdded{
		ProductID: item.ProductID(),
		Quantity:  item.Quantity(),
		Seq:       s.seq,
		At:        now,
	}
	s.updatedAt = now
	return domcart.NewItemAddedEvent(s.sessionID, s.storeID, item.ProductID(), item.Quantity(), s.seq), nil
}

// RemoveItem reports whether a line was removed. Removing an absent product
// is a no-op.
func (s *Store) RemoveItem(productID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	removed := s.cart.RemoveItem(productID)
	if removed {
		s.touch()
	}
	return removed, nil
}

// UpdateItemQuantity sets the quantity of a present product; quantity <= 0
// removes it. It reports whether the product was present.
func (s *Store) UpdateItemQuantity(productID string, quantity int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	found, err := s.cart.UpdateItemQuantity(productID, quantity)
	if err != nil {
		return found, err
	}
	if found {
		s.touch()
	}
	return found, nil
}

func (s *Store) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.cart.Clear()
	s.lastAdded = nil
	s.touch()
	return nil
}

func (s *Store) HasItems() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cart.IsEmpty()
}

// SwitchStore rebinds the cart to storeID. A non-empty cart bound elsewhere
// is only discarded when confirm is set; otherwise ErrCartNotEmpty tells the
// caller to ask first.
func (s *Store) SwitchStore(storeID string, confirm bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if storeID == s.storeID {
		return nil
	}
	if !s.cart.IsEmpty() {
		if !confirm {
			return domcart.ErrCartNotEmpty
		}
		s.cart.Clear()
		s.lastAdded = nil
	}
	s.storeID = storeID
	s.touch()
	return nil
}

// Checkout hands the current cart to fn while holding the Store, and clears
// the cart only if fn succeeds. Concurrent adds wait until fn returns, so
// nothing added mid-checkout is lost.
func (s *Store) Checkout(fn func(View) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.cart.IsEmpty() {
		return domcart.ErrEmptyCart
	}
	if err := fn(s.view()); err != nil {
		return err
	}
	s.cart.Clear()
	s.lastAdded = nil
	s.touch()
	return nil
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Store) view() View {
	v := View{
		SessionID: s.sessionID,
		StoreID:   s.storeID,
		Items:     s.cart.Items(),
		Total:     s.cart.Total(),
		Units:     s.cart.TotalQuantity(),
		UpdatedAt: s.updatedAt,
	}
	if s.lastAdded != nil {
		la := *s.lastAdded
		v.LastAdded = &la
	}
	return v
}

func (s *Store) Snapshot() *domcart.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := domcart.SnapshotOf(s.sessionID, s.storeID, s.cart)
	snap.UpdatedAt = s.updatedAt
	return snap
}

// acquire marks the Store as used at now. It reports false once the Store
// is closed.
func (s *Store) acquire(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.seen = now
	return true
}

func (s *Store) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.seen.Before(cutoff)
}

// closeIf refuses further mutations and returns the final snapshot, unless
// the Store is already closed or was used at or after notSeenSince. A zero
// notSeenSince closes unconditionally.
func (s *Store) closeIf(notSeenSince time.Time) (*domcart.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	if !notSeenSince.IsZero() && !s.seen.Before(notSeenSince) {
		return nil, false
	}
	s.closed = true
	snap := domcart.SnapshotOf(s.sessionID, s.storeID, s.cart)
	snap.UpdatedAt = s.updatedAt
	return snap, true
}

func (s *Store) touch() {
	s.updatedAt = time.Now().UTC()
}
