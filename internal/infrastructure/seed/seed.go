// Package seed loads storefronts and products from a YAML document.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Product struct {
	ID                 string   `yaml:"id"`
	StoreID            string   `yaml:"store_id"`
	OwnerID            string   `yaml:"owner_id"`
	Title              string   `yaml:"title"`
	Description        string   `yaml:"description"`
	Category           string   `yaml:"category"`
	Brand              string   `yaml:"brand"`
	SKU                string   `yaml:"sku"`
	Price              string   `yaml:"price"`
	DiscountPercentage float64  `yaml:"discount_percentage"`
	Rating             float64  `yaml:"rating"`
	Stock              int      `yaml:"stock"`
	Tags               []string `yaml:"tags"`
	Images             []string `yaml:"images"`
	Thumbnail          string   `yaml:"thumbnail"`
}

type File struct {
	Stores   []domstore.Storefront `yaml:"stores"`
	Products []Product             `yaml:"products"`
}

type StorefrontSaver interface {
	Save(ctx context.Context, s *domstore.Storefront) error
}

type ProductUpserter interface {
	Upsert(ctx context.Context, p *domcatalog.Product) error
}

type Result struct {
	Stores   int
	Products int
}

func LoadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes and validates a seed document. Unknown keys are rejected so
// typos do not silently drop data.
func Load(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("seed: decode: %w", err)
	}

	stores := make(map[string]struct{}, len(f.Stores))
	for i := range f.Stores {
		if err := f.Stores[i].Validate(); err != nil {
			return nil, fmt.Errorf("seed: stores[%d]: %w", i, err)
		}
		stores[f.Stores[i].ID] = struct{}{}
	}
	for i, p := range f.Products {
		if _, ok := stores[p.StoreID]; !ok {
			return nil, fmt.Errorf("seed: products[%d] %q: unknown store %q", i, p.ID, p.StoreID)
		}
		if _, err := p.toDomain(time.Time{}); err != nil {
			return nil, fmt.Errorf("seed: products[%d] %q: %w", i, p.ID, err)
		}
	}
	return &f, nil
}

// Apply writes every store and product. Products are upserted, so running
// the same seed twice resets their stock.
func Apply(ctx context.Context, f *File, stores StorefrontSaver, products ProductUpserter) (Result, error) {
	var res Result
	for i := range f.Stores {
		s := f.Stores[i]
		if err := stores.Save(ctx, &s); err != nil {
			return res, fmt.Errorf("seed: store %s: %w", s.ID, err)
		}
		res.Stores++
	}

	now := time.Now().UTC()
	for _, p := range f.Products {
		dp, err := p.toDomain(now)
		if err != nil {
			return res, fmt.Errorf("seed: product %s: %w", p.ID, err)
		}
		if err := products.Upsert(ctx, dp); err != nil {
			return res, fmt.Errorf("seed: product %s: %w", p.ID, err)
		}
		res.Products++
	}
	return res, nil
}

func (p Product) toDomain(now time.Time) (*domcatalog.Product, error) {
	if p.ID == "" {
		return nil, errors.New("id is required")
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil {
		return nil, fmt.Errorf("price %q: %w", p.Price, err)
	}
	dp := &domcatalog.Product{
		ID:                 p.ID,
		StoreID:            p.StoreID,
		OwnerID:            p.OwnerID,
		Title:              p.Title,
		Description:        p.Description,
		Category:           p.Category,
		Brand:              p.Brand,
		SKU:                p.SKU,
		Price:              price,
		DiscountPercentage: p.DiscountPercentage,
		Rating:             p.Rating,
		Stock:              p.Stock,
		Tags:               p.Tags,
		Images:             p.Images,
		Thumbnail:          p.Thumbnail,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := dp.Validate(); err != nil {
		return nil, err
	}
	return dp, nil
}
