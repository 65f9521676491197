package cli

import (
	"context"
	"fmt"

	domcart "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	domstore "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
	"github.com/Zhima-Mochi/corralon-storefront/internal/config"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/seed"
	"github.com/Zhima-Mochi/corralon-storefront/internal/infrastructure/sqlstore"
)

// productStore is the catalog, which also holds stock.
type productStore interface {
	domcatalog.Repository
	dominv.Repository
	seed.ProductUpserter
}

type storage struct {
	products    productStore
	storefronts domstore.Repository
	orders      domorder.Repository
	carts       domcart.SnapshotRepository
	db          *sqlstore.DB
}

// openStorage picks the repositories for the configured driver. SQL
// drivers are migrated on open.
func openStorage(ctx context.Context, cfg config.StorageConfig) (*storage, error) {
	if cfg.Driver == "memory" {
		return &storage{
			products:    memory.NewProductRepository(),
			storefronts: memory.NewStorefrontRepository(),
			orders:      memory.NewOrderRepository(),
			carts:       memory.NewCartSnapshotRepository(),
		}, nil
	}

	db, err := sqlstore.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &storage{
		products:    sqlstore.NewProductRepository(db),
		storefronts: sqlstore.NewStorefrontRepository(db),
		orders:      sqlstore.NewOrderRepository(db),
		carts:       sqlstore.NewCartSnapshotRepository(db),
		db:          db,
	}, nil
}

func (s *storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
