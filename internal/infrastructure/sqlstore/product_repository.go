package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/catalog"
	dominv "github.com/Zhima-Mochi/corralon-storefront/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

const productColumns = `id, store_id, owner_id, title, description, category, brand, sku, price,
	discount_percentage, rating, stock, tags, images, thumbnail, created_at, updated_at`

// ProductRepository stores the catalog. Like the in-memory one it doubles
// as the inventory.
type ProductRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// List pushes the store and owner filters down; the rest of the query runs
// in memory.
func (r *ProductRepository) List(ctx context.Context, q domain.Query) ([]*domain.Product, error) {
	stmt := `SELECT ` + productColumns + ` FROM products WHERE 1 = 1`
	var args []any
	if q.StoreID != "" {
		stmt += ` AND store_id = ?`
		args = append(args, q.StoreID)
	}
	if q.OwnerID != "" {
		stmt += ` AND owner_id = ?`
		args = append(args, q.OwnerID)
	}
	stmt += ` ORDER BY id`

	rows, err := r.db.query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return domain.Apply(out, q), nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.queryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return p, err
}

func (r *ProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	args, err := productArgs(p)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, p.ID)
	}
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Upsert inserts or replaces p. Used by seeding.
func (r *ProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	args, err := productArgs(p)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			store_id = excluded.store_id, owner_id = excluded.owner_id,
			title = excluded.title, description = excluded.description,
			category = excluded.category, brand = excluded.brand, sku = excluded.sku,
			price = excluded.price, discount_percentage = excluded.discount_percentage,
			rating = excluded.rating, stock = excluded.stock, tags = excluded.tags,
			images = excluded.images, thumbnail = excluded.thumbnail,
			updated_at = excluded.updated_at`, args...)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	args, err := productArgs(p)
	if err != nil {
		return err
	}
	// id first in productArgs; move it to the WHERE clause
	args = append(args[1:], args[0])
	res, err := r.db.exec(ctx, `UPDATE products SET
		store_id = ?, owner_id = ?, title = ?, description = ?, category = ?, brand = ?, sku = ?,
		price = ?, discount_percentage = ?, rating = ?, stock = ?, tags = ?, images = ?,
		thumbnail = ?, created_at = ?, updated_at = ?
		WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return expectOne(res, domain.ErrNotFound)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.exec(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return expectOne(res, domain.ErrNotFound)
}

// Reserve deducts every line or none. Each decrement is conditional on
// enough stock so concurrent reservations cannot oversell.
func (r *ProductRepository) Reserve(ctx context.Context, lines []dominv.Line) error {
	lines, err := dominv.Normalize(lines)
	if err != nil {
		return err
	}
	now := formatTime(time.Now())

	return r.db.inTx(ctx, func(tx *sql.Tx) error {
		for _, l := range lines {
			res, err := tx.ExecContext(ctx, r.db.rebind(
				`UPDATE products SET stock = stock - ?, updated_at = ? WHERE id = ? AND stock >= ?`),
				l.Quantity, now, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("reserve %s: %w", l.ProductID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if n == 1 {
				continue
			}

			var available int
			err = tx.QueryRowContext(ctx, r.db.rebind(`SELECT stock FROM products WHERE id = ?`), l.ProductID).Scan(&available)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", dominv.ErrNotFound, l.ProductID)
			}
			if err != nil {
				return err
			}
			return &dominv.ShortageError{ProductID: l.ProductID, Requested: l.Quantity, Available: available}
		}
		return nil
	})
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (*domain.Product, error) {
	var (
		p                    domain.Product
		price                string
		tags, images         string
		createdAt, updatedAt string
	)
	err := s.Scan(&p.ID, &p.StoreID, &p.OwnerID, &p.Title, &p.Description, &p.Category, &p.Brand, &p.SKU,
		&price, &p.DiscountPercentage, &p.Rating, &p.Stock, &tags, &images, &p.Thumbnail, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("product %s: price: %w", p.ID, err)
	}
	if err = json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return nil, fmt.Errorf("product %s: tags: %w", p.ID, err)
	}
	if err = json.Unmarshal([]byte(images), &p.Images); err != nil {
		return nil, fmt.Errorf("product %s: images: %w", p.ID, err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("product %s: created_at: %w", p.ID, err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("product %s: updated_at: %w", p.ID, err)
	}
	return &p, nil
}

func productArgs(p *domain.Product) ([]any, error) {
	if p == nil || p.ID == "" {
		return nil, errors.New("product repository: id is required")
	}
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return nil, err
	}
	images, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID, p.StoreID, p.OwnerID, p.Title, p.Description, p.Category, p.Brand, p.SKU,
		p.Price.String(), p.DiscountPercentage, p.Rating, p.Stock, string(tags), string(images),
		p.Thumbnail, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	}, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
