package cart

import "time"

// ItemAddedEvent announces that a product was just added to a session cart.
// Presentation layers use it for transient feedback; timing is theirs.
type ItemAddedEvent struct {
	SessionID  string
	StoreID    string
	ProductID  string
	Quantity   int
	Seq        uint64
	OccurredAt time.Time
}

func (ItemAddedEvent) EventName() string { return "cart.item_added" }

func NewItemAddedEvent(sessionID, storeID, productID string, quantity int, seq uint64) ItemAddedEvent {
	return ItemAddedEvent{
		SessionID:  sessionID,
		StoreID:    storeID,
		ProductID:  productID,
		Quantity:   quantity,
		Seq:        seq,
		OccurredAt: time.Now().UTC(),
	}
}
