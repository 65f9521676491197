package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/Zhima-Mochi/corralon-storefront/internal/domain/cart"
)

type CartSnapshotRepository struct {
	db *DB
}

func NewCartSnapshotRepository(db *DB) *CartSnapshotRepository {
	return &CartSnapshotRepository{db: db}
}

func (r *CartSnapshotRepository) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var (
		s                domain.Snapshot
		lines, updatedAt string
	)
	err := r.db.queryRow(ctx, `SELECT session_id, store_id, lines, updated_at FROM cart_snapshots WHERE session_id = ?`, sessionID).
		Scan(&s.SessionID, &s.StoreID, &lines, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load cart snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(lines), &s.Lines); err != nil {
		return nil, fmt.Errorf("cart snapshot %s: %w", sessionID, err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CartSnapshotRepository) Save(ctx context.Context, s *domain.Snapshot) error {
	if s == nil || s.SessionID == "" {
		return errors.New("cart snapshot repository: session id is required")
	}
	lines := s.Lines
	if lines == nil {
		lines = []domain.Line{}
	}
	doc, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	_, err = r.db.exec(ctx, `INSERT INTO cart_snapshots (session_id, store_id, lines, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (session_id) DO UPDATE SET
			store_id = excluded.store_id, lines = excluded.lines, updated_at = excluded.updated_at`,
		s.SessionID, s.StoreID, string(doc), formatTime(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (r *CartSnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.db.exec(ctx, `DELETE FROM cart_snapshots WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete cart snapshot: %w", err)
	}
	return nil
}
