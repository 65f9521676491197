package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/order"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, idempotency_key, customer_id, store_id, lines, subtotal, shipping_cost, total,
	shipping, payment_method, contact, status, failure_reason, created_at, updated_at`

type orderLine struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type orderContact struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Province string `json:"province"`
	City     string `json:"city"`
}

type OrderRepository struct {
	db *DB
}

func NewOrderRepository(db *DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Insert fails with ErrConflict on a duplicate id or a reused
// (customer, idempotency key) pair.
func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	args, err := orderArgs(o)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `INSERT INTO orders (`+orderColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return domain.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.queryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	return oneOrder(row)
}

// Update persists the mutable part of an order: its status and failure reason.
func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return errors.New("order repository: id is required")
	}
	res, err := r.db.exec(ctx, `UPDATE orders SET status = ?, failure_reason = ?, updated_at = ? WHERE id = ?`,
		string(o.Status), o.FailureReason, formatTime(o.UpdatedAt), o.ID)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return expectOne(res, domain.ErrNotFound)
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, customerID, key string) (*domain.Order, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	row := r.db.queryRow(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE customer_id = ? AND idempotency_key = ?`, customerID, key)
	return oneOrder(row)
}

func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Order, error) {
	rows, err := r.db.query(ctx, `SELECT `+orderColumns+` FROM orders
		WHERE customer_id = ? ORDER BY created_at DESC, id DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func oneOrder(row *sql.Row) (*domain.Order, error) {
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return o, err
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o                               domain.Order
		lines, contact                  string
		subtotal, shippingCost, total   string
		shipping, paymentMethod, status string
		createdAt, updatedAt            string
	)
	err := s.Scan(&o.ID, &o.IdempotencyKey, &o.CustomerID, &o.StoreID, &lines, &subtotal, &shippingCost, &total,
		&shipping, &paymentMethod, &contact, &status, &o.FailureReason, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var rows []orderLine
	if err := json.Unmarshal([]byte(lines), &rows); err != nil {
		return nil, fmt.Errorf("order %s: lines: %w", o.ID, err)
	}
	o.Lines = make([]domain.Line, 0, len(rows))
	for _, l := range rows {
		o.Lines = append(o.Lines, domain.Line(l))
	}

	var c orderContact
	if err := json.Unmarshal([]byte(contact), &c); err != nil {
		return nil, fmt.Errorf("order %s: contact: %w", o.ID, err)
	}
	o.Contact = domain.Contact(c)

	for _, m := range []struct {
		dst *decimal.Decimal
		src string
	}{{&o.Subtotal, subtotal}, {&o.ShippingCost, shippingCost}, {&o.Total, total}} {
		if *m.dst, err = decimal.NewFromString(m.src); err != nil {
			return nil, fmt.Errorf("order %s: amount: %w", o.ID, err)
		}
	}

	o.Shipping = domain.ShippingMethod(shipping)
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)
	o.Status = domain.Status(status)
	if o.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if o.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func orderArgs(o *domain.Order) ([]any, error) {
	if o == nil || o.ID == "" {
		return nil, errors.New("order repository: id is required")
	}
	rows := make([]orderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		rows = append(rows, orderLine(l))
	}
	lines, err := json.Marshal(rows)
	if err != nil {
		return nil, err
	}
	contact, err := json.Marshal(orderContact(o.Contact))
	if err != nil {
		return nil, err
	}
	return []any{
		o.ID, o.IdempotencyKey, o.CustomerID, o.StoreID, string(lines),
		o.Subtotal.String(), o.ShippingCost.String(), o.Total.String(),
		string(o.Shipping), string(o.PaymentMethod), string(contact), string(o.Status), o.FailureReason,
		formatTime(o.CreatedAt), formatTime(o.UpdatedAt),
	}, nil
}
