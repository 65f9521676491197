package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Zhima-Mochi/corralon-storefront/internal/application"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	catalogService = "catalog-service"

	useCaseList       = "catalog.list"
	useCaseGet        = "catalog.get"
	useCaseCategories = "catalog.categories"
	useCaseStores     = "catalog.list_stores"
	useCaseStore      = "catalog.get_store"
	useCaseCreate     = "dashboard.create_product"
	useCaseUpdate     = "dashboard.update_product"
	useCaseDelete     = "dashboard.delete_product"
	useCaseOwn        = "dashboard.list_products"
	useCaseStats      = "dashboard.stats"
)

// Service serves the public catalog and the seller dashboard.
type Service struct {
	products domcatalog.Repository
	stores   domstore.Repository
	ids      application.IDGenerator
	ins      *application.Instruments
}

func NewService(
	products domcatalog.Repository,
	stores domstore.Repository,
	ids application.IDGenerator,
	tel observability.Observability,
) *Service {
	return &Service{
		products: products,
		stores:   stores,
		ids:      ids,
		ins:      application.NewInstruments(tel, catalogService),
	}
}

// List returns the products matching q. Repositories may filter only
// partially, so the query is always applied again here.
func (s *Service) List(ctx context.Context, q domcatalog.Query) (_ []*domcatalog.Product, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseList, "ListProducts",
		attribute.String("catalog.store_id", q.StoreID),
		attribute.StringSlice("catalog.categories", q.Categories),
		attribute.String("catalog.sort", string(q.Sort)),
	)
	defer func() { call.End(err) }()

	products, err := s.products.List(ctx, q)
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return nil, application.Repository(err)
	}
	out := domcatalog.Apply(products, q)
	call.Field("results", len(out))
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (_ *domcatalog.Product, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseGet, "GetProduct",
		attribute.String("product.id", id),
	)
	defer func() { call.End(err) }()

	p, err := s.products.Get(ctx, id)
	if err != nil {
		call.Fail("PRODUCT_LOOKUP_FAILED")
		return nil, lookupError(err)
	}
	return p, nil
}

// Categories lists the distinct categories of a store, or of the whole
// catalog when storeID is empty.
func (s *Service) Categories(ctx context.Context, storeID string) (_ []string, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseCategories, "Categories",
		attribute.String("catalog.store_id", storeID),
	)
	defer func() { call.End(err) }()

	products, err := s.products.List(ctx, domcatalog.Query{StoreID: storeID})
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return nil, application.Repository(err)
	}
	return domcatalog.Categories(domcatalog.Apply(products, domcatalog.Query{StoreID: storeID})), nil
}

func (s *Service) Stores(ctx context.Context) (_ []*domstore.Storefront, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseStores, "ListStores")
	defer func() { call.End(err) }()

	stores, err := s.stores.List(ctx)
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return nil, application.Repository(err)
	}
	return stores, nil
}

func (s *Service) Store(ctx context.Context, id string) (_ *domstore.Storefront, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseStore, "GetStore",
		attribute.String("store.id", id),
	)
	defer func() { call.End(err) }()

	store, err := s.stores.Get(ctx, id)
	if err != nil {
		call.Fail("STORE_LOOKUP_FAILED")
		return nil, lookupError(err)
	}
	return store, nil
}

// OwnProducts lists the products a seller manages, newest first.
func (s *Service) OwnProducts(ctx context.Context, ownerID string) (_ []*domcatalog.Product, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseOwn, "OwnProducts")
	defer func() { call.End(err) }()

	if err = requireOwner(call, ownerID); err != nil {
		return nil, err
	}
	q := domcatalog.Query{OwnerID: ownerID, Sort: domcatalog.SortNewest}
	products, err := s.products.List(ctx, q)
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return nil, application.Repository(err)
	}
	return domcatalog.Apply(products, q), nil
}

// ProductInput is the editable part of a product document.
type ProductInput struct {
	StoreID            string
	Title              string
	Description        string
	Category           string
	Brand              string
	SKU                string
	Price              string
	DiscountPercentage float64
	Rating             float64
	Stock              int
	Tags               []string
	Images             []string
	Thumbnail          string
}

func (s *Service) CreateProduct(ctx context.Context, ownerID string, in ProductInput) (_ *domcatalog.Product, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseCreate, "CreateProduct",
		attribute.String("store.id", in.StoreID),
	)
	defer func() { call.End(err) }()

	if err = requireOwner(call, ownerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.StoreID) == "" {
		call.Fail("STORE_ID_REQUIRED")
		return nil, application.Validation("store id is required")
	}
	if _, err = s.stores.Get(ctx, in.StoreID); err != nil {
		call.Fail("STORE_LOOKUP_FAILED")
		return nil, lookupError(err)
	}

	now := time.Now().UTC()
	p := &domcatalog.Product{
		ID:        s.ids.NewID(),
		OwnerID:   ownerID,
		CreatedAt: now,
	}
	if err = apply(p, in); err != nil {
		call.Fail("PRODUCT_INVALID")
		return nil, err
	}
	p.UpdatedAt = now
	if err = s.products.Insert(ctx, p); err != nil {
		if errors.Is(err, domcatalog.ErrAlreadyExists) {
			call.Fail("PRODUCT_EXISTS")
			return nil, err
		}
		call.Fail("REPO_INSERT_FAILED")
		return nil, application.Repository(err)
	}
	call.Field("product_id", p.ID)
	return p, nil
}

// UpdateProduct replaces the editable fields of a product the seller owns.
// The owner and store of a product never change.
func (s *Service) UpdateProduct(ctx context.Context, ownerID, id string, in ProductInput) (_ *domcatalog.Product, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseUpdate, "UpdateProduct",
		attribute.String("product.id", id),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", id)

	p, err := s.owned(ctx, call, ownerID, id)
	if err != nil {
		return nil, err
	}
	in.StoreID = p.StoreID
	if err = apply(p, in); err != nil {
		call.Fail("PRODUCT_INVALID")
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()
	if err = s.products.Update(ctx, p); err != nil {
		call.Fail("REPO_UPDATE_FAILED")
		return nil, lookupError(err)
	}
	return p, nil
}

func (s *Service) DeleteProduct(ctx context.Context, ownerID, id string) (err error) {
	ctx, call := s.ins.Begin(ctx, useCaseDelete, "DeleteProduct",
		attribute.String("product.id", id),
	)
	defer func() { call.End(err) }()
	call.Field("product_id", id)

	if _, err = s.owned(ctx, call, ownerID, id); err != nil {
		return err
	}
	if err = s.products.Delete(ctx, id); err != nil {
		call.Fail("REPO_DELETE_FAILED")
		return lookupError(err)
	}
	return nil
}

// Stats summarises a seller's products for the dashboard cards.
func (s *Service) Stats(ctx context.Context, ownerID string) (_ domcatalog.Stats, err error) {
	ctx, call := s.ins.Begin(ctx, useCaseStats, "Stats")
	defer func() { call.End(err) }()

	if err = requireOwner(call, ownerID); err != nil {
		return domcatalog.Stats{}, err
	}
	q := domcatalog.Query{OwnerID: ownerID}
	products, err := s.products.List(ctx, q)
	if err != nil {
		call.Fail("REPO_LIST_FAILED")
		return domcatalog.Stats{}, application.Repository(err)
	}
	return domcatalog.Summarize(domcatalog.Apply(products, q)), nil
}

func (s *Service) owned(ctx context.Context, call *application.Call, ownerID, id string) (*domcatalog.Product, error) {
	if err := requireOwner(call, ownerID); err != nil {
		return nil, err
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		call.Fail("PRODUCT_LOOKUP_FAILED")
		return nil, lookupError(err)
	}
	if !p.OwnedBy(ownerID) {
		call.Fail("NOT_OWNER")
		return nil, domcatalog.ErrForbidden
	}
	return p, nil
}

func apply(p *domcatalog.Product, in ProductInput) error {
	price, err := parsePrice(in.Price)
	if err != nil {
		return err
	}
	p.StoreID = strings.TrimSpace(in.StoreID)
	p.Title = strings.TrimSpace(in.Title)
	p.Description = strings.TrimSpace(in.Description)
	p.Category = strings.ToLower(strings.TrimSpace(in.Category))
	p.Brand = strings.TrimSpace(in.Brand)
	p.SKU = strings.TrimSpace(in.SKU)
	p.Price = price
	p.DiscountPercentage = in.DiscountPercentage
	p.Rating = in.Rating
	p.Stock = in.Stock
	p.Tags = append([]string(nil), in.Tags...)
	p.Images = append([]string(nil), in.Images...)
	p.Thumbnail = strings.TrimSpace(in.Thumbnail)
	return p.Validate()
}

func requireOwner(call *application.Call, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		call.Fail("IDENTITY_REQUIRED")
		return application.ErrUnauthorized
	}
	return nil
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, domcatalog.ErrNotFound), errors.Is(err, domstore.ErrNotFound):
		return err
	default:
		return application.Repository(err)
	}
}
