package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	cartService = "cart-service"

	useCaseAdd    = "cart.add_item"
	useCaseRemove = "cart.remove_item"
	useCaseUpdate = "cart.update_quantity"
	useCaseClear  = "cart.clear"
	useCaseGet    = "cart.get"
	useCaseSwitch = "cart.switch_store"
	useCaseEnd    = "cart.end_session"

	maxReopen = 3
)

// Service exposes the session carts to transports. Every call resolves the
// session's Store through Sessions and persists its snapshot after a
// mutation.
type Service struct {
	sessions  *Sessions
	products  domcatalog.Repository
	stores    domstore.Repository
	publisher domoutbox.Publisher
	ins       *application.Instruments
}

func NewService(
	sessions *Sessions,
	products domcatalog.Repository,
	stores domstore.Repository,
	publisher domoutbox.Publisher,
	tel observability.Observability,
) *Service {
	return &Service{
		sessions:  sessions,
		products:  products,
		stores:    stores,
		publisher: publisher,
		ins:       application.NewInstruments(tel, cartService),
	}
}

type AddItemInput struct {
	SessionID string
	ProductID string
	Quantity  int
}

// AddItem snapshots the catalog product into the cart. The catalog stock is
// the line's ceiling; a product with no stock cannot be added.
func (s *Service) AddItem(ctx context.Context, cmd AddItemInput) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseAdd, "AddItem",
		attribute.String("cart.session_id", cmd.SessionID),
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("cart.quantity", cmd.Quantity),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", cmd.ProductID)
	call.Field("quantity", cmd.Quantity)

	if cmd.Quantity <= 0 {
		call.Fail("QUANTITY_INVALID")
		return View{}, domcart.ErrInvalidQuantity
	}
	if err = requireSession(call, cmd.SessionID); err != nil {
		return View{}, err
	}

	p, err := s.products.Get(ctx, strings.TrimSpace(cmd.ProductID))
	if err != nil {
		call.Fail("PRODUCT_LOOKUP_FAILED")
		return View{}, lookupError(err)
	}
	if p.Stock <= 0 {
		call.Fail("OUT_OF_STOCK")
		return View{}, domcart.ErrStockExceeded
	}
	snapshot, err := domcart.NewProduct(p.ID, p.Title, p.Price, p.Stock, p.Image(), p.StoreID)
	if err != nil {
		call.Fail("PRODUCT_INVALID")
		return View{}, err
	}
	item, err := domcart.NewLineItem(cmd.Quantity, snapshot)
	if err != nil {
		call.Fail("LINE_INVALID")
		return View{}, err
	}

	var evt domcart.ItemAddedEvent
	store, err := s.mutate(ctx, call, cmd.SessionID, func(st *Store) (bool, error) {
		var aerr error
		evt, aerr = st.AddItem(item)
		return aerr == nil, aerr
	})
	if err != nil {
		return View{}, err
	}

	if pubErr := s.ins.Publish(ctx, s.publisher, evt); pubErr != nil {
		call.Status("EVENT_PUBLISH_FAILED")
	}
	call.Span().AddEvent("cart.item_added",
		trace.WithAttributes(attribute.Int64("cart.seq", int64(evt.Seq))),
	)
	return store.View(), nil
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productID string) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseRemove, "RemoveItem",
		attribute.String("cart.session_id", sessionID),
		attribute.String("product.id", productID),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", productID)

	store, err := s.mutate(ctx, call, sessionID, func(st *Store) (bool, error) {
		removed, rerr := st.RemoveItem(productID)
		if rerr == nil && !removed {
			call.Status("NOT_IN_CART")
		}
		return removed, rerr
	})
	if err != nil {
		return View{}, err
	}
	return store.View(), nil
}

type UpdateItemInput struct {
	SessionID string
	ProductID string
	Quantity  int
}

// UpdateItemQuantity sets a line's quantity; zero or less removes the line.
// An absent product leaves the cart unchanged.
func (s *Service) UpdateItemQuantity(ctx context.Context, cmd UpdateItemInput) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseUpdate, "UpdateItemQuantity",
		attribute.String("cart.session_id", cmd.SessionID),
		attribute.String("product.id", cmd.ProductID),
		attribute.Int("cart.quantity", cmd.Quantity),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", cmd.ProductID)
	call.Field("quantity", cmd.Quantity)

	store, err := s.mutate(ctx, call, cmd.SessionID, func(st *Store) (bool, error) {
		found, uerr := st.UpdateItemQuantity(cmd.ProductID, cmd.Quantity)
		if uerr == nil && !found {
			call.Status("NOT_IN_CART")
		}
		return found, uerr
	})
	if err != nil {
		return View{}, err
	}
	return store.View(), nil
}

func (s *Service) Clear(ctx context.Context, sessionID string) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseClear, "Clear",
		attribute.String("cart.session_id", sessionID),
	)
	defer func() { call.End(err) }()

	store, err := s.mutate(ctx, call, sessionID, func(st *Store) (bool, error) {
		return true, st.ClearCart()
	})
	if err != nil {
		return View{}, err
	}
	return store.View(), nil
}

func (s *Service) Get(ctx context.Context, sessionID string) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseGet, "Get",
		attribute.String("cart.session_id", sessionID),
	)
	defer func() { call.End(err) }()

	if err = requireSession(call, sessionID); err != nil {
		return View{}, err
	}
	v, err := s.sessions.View(ctx, sessionID)
	if err != nil {
		call.Fail("SESSION_OPEN_FAILED")
		return View{}, application.Repository(err)
	}
	return v, nil
}

type SwitchStoreInput struct {
	SessionID string
	StoreID   string
	Confirm   bool
}

// SwitchStore is the "leave store" flow. Without Confirm a cart holding
// items fails with cart.ErrCartNotEmpty so the caller can warn the user.
func (s *Service) SwitchStore(ctx context.Context, cmd SwitchStoreInput) (_ View, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseSwitch, "SwitchStore",
		attribute.String("cart.session_id", cmd.SessionID),
		attribute.String("store.id", cmd.StoreID),
		attribute.Bool("cart.confirm", cmd.Confirm),
	)
	defer func() { call.End(err) }()
	call.Field("store_id", cmd.StoreID)

	storeID := strings.TrimSpace(cmd.StoreID)
	if storeID == "" {
		call.Fail("STORE_ID_REQUIRED")
		return View{}, application.Validation("store id is required")
	}
	if s.stores != nil {
		if _, err = s.stores.Get(ctx, storeID); err != nil {
			call.Fail("STORE_LOOKUP_FAILED")
			return View{}, lookupError(err)
		}
	}

	store, err := s.mutate(ctx, call, cmd.SessionID, func(st *Store) (bool, error) {
		return true, st.SwitchStore(storeID, cmd.Confirm)
	})
	if err != nil {
		return View{}, err
	}
	return store.View(), nil
}

// EndSession tears the session's Store down, keeping its snapshot.
func (s *Service) EndSession(ctx context.Context, sessionID string) (err error) {
	ctx, call := s.ins.Begin(ctx, useCaseEnd, "EndSession",
		attribute.String("cart.session_id", sessionID),
	)
	defer func() { call.End(err) }()

	if strings.TrimSpace(sessionID) == "" {
		call.Fail("SESSION_ID_REQUIRED")
		return application.Validation("session id is required")
	}
	if err = s.sessions.Close(ctx, sessionID); err != nil {
		call.Fail("SNAPSHOT_SAVE_FAILED")
		return application.Repository(err)
	}
	return nil
}

// Session returns the live Store for checkout, which reads and clears it.
func (s *Service) Session(ctx context.Context, sessionID string) (*Store, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, application.Validation("session id is required")
	}
	return s.sessions.Open(ctx, sessionID)
}

// Persist saves the snapshot of a Store mutated outside this service.
func (s *Service) Persist(ctx context.Context, store *Store) error {
	return s.sessions.Persist(ctx, store)
}

func requireSession(call *application.Call, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		call.Fail("SESSION_ID_REQUIRED")
		return application.Validation("session id is required")
	}
	return nil
}

// mutate runs fn against the session's live Store and persists the result
// when fn reports a change. A Store closed between Open and fn is reopened
// from its final snapshot and fn runs again.
func (s *Service) mutate(ctx context.Context, call *application.Call, sessionID string, fn func(*Store) (bool, error)) (*Store, error) {
	if err := requireSession(call, sessionID); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		store, err := s.sessions.Open(ctx, sessionID)
		if err != nil {
			call.Fail("SESSION_OPEN_FAILED")
			return nil, application.Repository(err)
		}
		changed, err := fn(store)
		if errors.Is(err, ErrSessionClosed) && attempt < maxReopen {
			continue
		}
		if err != nil {
			call.Fail(statusOf(err))
			return nil, err
		}
		if changed {
			s.persist(ctx, call, store)
		}
		return store, nil
	}
}

// persist is best effort: the live Store stays authoritative for the session.
func (s *Service) persist(ctx context.Context, call *application.Call, store *Store) {
	if err := s.sessions.Persist(ctx, store); err != nil {
		call.Status("SNAPSHOT_SAVE_FAILED")
		call.Log.Warn("cart_snapshot_save_failed",
			observability.F("error", err.Error()),
		)
	}
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, domcatalog.ErrNotFound), errors.Is(err, domstore.ErrNotFound):
		return err
	default:
		return application.Repository(err)
	}
}

func statusOf(err error) string {
	switch {
	case errors.Is(err, domcart.ErrInvalidQuantity):
		return "QUANTITY_INVALID"
	case errors.Is(err, domcart.ErrStockExceeded):
		return "STOCK_EXCEEDED"
	case errors.Is(err, domcart.ErrStoreMismatch):
		return "STORE_MISMATCH"
	case errors.Is(err, domcart.ErrCartNotEmpty):
		return "CART_NOT_EMPTY"
	case errors.Is(err, ErrSessionClosed):
		return "SESSION_CLOSED"
	default:
		return "ERROR"
	}
}
