package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Line is the persisted form of a LineItem.
type Line struct {
	ProductID    string          `json:"product_id"`
	Title        string          `json:"title"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	StockCeiling int             `json:"stock_ceiling"`
	Image        string          `json:"image"`
	StoreID      string          `json:"store_id"`
	Quantity     int             `json:"quantity"`
}

// Snapshot is a point-in-time copy of one session's cart, used to carry a
// cart across process restarts.
type Snapshot struct {
	SessionID string
	StoreID   string
	Lines     []Line
	UpdatedAt time.Time
}

type SnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

func SnapshotOf(sessionID, storeID string, c *Cart) *Snapshot {
	items := c.Items()
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		p := item.Product()
		lines = append(lines, Line{
			ProductID:    p.ID,
			Title:        p.Title,
			UnitPrice:    p.UnitPrice,
			StockCeiling: p.StockCeiling,
			Image:        p.Image,
			StoreID:      p.StoreID,
			Quantity:     item.Quantity(),
		})
	}
	return &Snapshot{
		SessionID: sessionID,
		StoreID:   storeID,
		Lines:     lines,
		UpdatedAt: time.Now().UTC(),
	}
}

// Cart rebuilds the aggregate, re-validating every persisted line.
func (s *Snapshot) Cart() (*Cart, error) {
	items := make([]LineItem, 0, len(s.Lines))
	for _, l := range s.Lines {
		p, err := NewProduct(l.ProductID, l.Title, l.UnitPrice, l.StockCeiling, l.Image, l.StoreID)
		if err != nil {
			return nil, err
		}
		item, err := NewLineItem(l.Quantity, p)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return Restore(items)
}

func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Lines = append([]Line(nil), s.Lines...)
	return &clone
}
