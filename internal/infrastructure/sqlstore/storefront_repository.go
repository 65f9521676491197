package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/storefront"
)

// StorefrontRepository keeps each storefront as one JSON document; only the
// name is broken out for ordering.
type StorefrontRepository struct {
	db *DB
}

func NewStorefrontRepository(db *DB) *StorefrontRepository {
	return &StorefrontRepository{db: db}
}

func (r *StorefrontRepository) List(ctx context.Context) ([]*domain.Storefront, error) {
	rows, err := r.db.query(ctx, `SELECT doc FROM storefronts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list storefronts: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Storefront, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		s, err := decodeStorefront(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StorefrontRepository) Get(ctx context.Context, id string) (*domain.Storefront, error) {
	var doc string
	err := r.db.queryRow(ctx, `SELECT doc FROM storefronts WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get storefront: %w", err)
	}
	return decodeStorefront(doc)
}

func (r *StorefrontRepository) Save(ctx context.Context, s *domain.Storefront) error {
	if s == nil {
		return errors.New("storefront repository: storefront is required")
	}
	if err := s.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `INSERT INTO storefronts (id, name, doc) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, doc = excluded.doc`,
		s.ID, s.Name, string(doc))
	if err != nil {
		return fmt.Errorf("save storefront: %w", err)
	}
	return nil
}

func decodeStorefront(doc string) (*domain.Storefront, error) {
	var s domain.Storefront
	if err := json.Unmarshal([]byte(doc), &s); err != nil {
		return nil, fmt.Errorf("decode storefront: %w", err)
	}
	return &s, nil
}
