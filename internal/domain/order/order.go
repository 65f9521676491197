package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("order: not found")
	ErrConflict               = errors.New("order: conflict")
	ErrNoLines                = errors.New("order: at least one line is required")
	ErrInvalidQuantity        = errors.New("order: quantity must be greater than zero")
	ErrInvalidAmount          = errors.New("order: amount must be zero or greater")
	ErrInvalidShipping        = errors.New("order: unknown shipping method")
	ErrInvalidPaymentMethod   = errors.New("order: unknown payment method")
	ErrInvalidContact         = errors.New("order: contact name, phone and address are required")
	ErrInvalidStateTransition = errors.New("order: invalid state transition")
)

type Status string

const (
	StatusPending           Status = "pending"
	StatusInventoryReserved Status = "inventory_reserved"
	StatusInventoryFailed   Status = "inventory_failed"
	StatusCompleted         Status = "completed"
	StatusPaymentFailed     Status = "payment_failed"
)

type ShippingMethod string

const (
	ShippingStandard ShippingMethod = "standard"
	ShippingExpress  ShippingMethod = "express"
)

func (m ShippingMethod) Valid() bool {
	return m == ShippingStandard || m == ShippingExpress
}

type PaymentMethod string

const (
	PaymentCredit   PaymentMethod = "credit"
	PaymentDebit    PaymentMethod = "debit"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCash     PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCredit, PaymentDebit, PaymentTransfer, PaymentCash:
		return true
	}
	return false
}

// Line is a frozen copy of one cart line at checkout time.
type Line struct {
	ProductID string
	Title     string
	UnitPrice decimal.Decimal
	Quantity  int
	Subtotal  decimal.Decimal
}

type Contact struct {
	FullName string
	Phone    string
	Address  string
	Province string
	City     string
}

func (c Contact) Valid() bool {
	return strings.TrimSpace(c.FullName) != "" &&
		strings.TrimSpace(c.Phone) != "" &&
		strings.TrimSpace(c.Address) != ""
}

type Order struct {
	ID             string
	IdempotencyKey string
	CustomerID     string
	StoreID        string
	Lines          []Line
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	Total          decimal.Decimal
	Shipping       ShippingMethod
	PaymentMethod  PaymentMethod
	Contact        Contact
	Status         Status
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	state OrderState
}

// Draft carries everything needed to place an order.
type Draft struct {
	ID             string
	IdempotencyKey string
	CustomerID     string
	StoreID        string
	Lines          []Line
	Shipping       ShippingMethod
	ShippingCost   decimal.Decimal
	PaymentMethod  PaymentMethod
	Contact        Contact
}

func New(d Draft) (*Order, error) {
	if len(d.Lines) == 0 {
		return nil, ErrNoLines
	}
	if !d.Shipping.Valid() {
		return nil, ErrInvalidShipping
	}
	if !d.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if !d.Contact.Valid() {
		return nil, ErrInvalidContact
	}
	if d.ShippingCost.IsNegative() {
		return nil, ErrInvalidAmount
	}

	lines := make([]Line, 0, len(d.Lines))
	subtotal := decimal.Zero
	for _, l := range d.Lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l.UnitPrice.IsNegative() {
			return nil, ErrInvalidAmount
		}
		l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
		subtotal = subtotal.Add(l.Subtotal)
		lines = append(lines, l)
	}

	now := time.Now().UTC()
	o := &Order{
		ID:             d.ID,
		IdempotencyKey: d.IdempotencyKey,
		CustomerID:     d.CustomerID,
		StoreID:        d.StoreID,
		Lines:          lines,
		Subtotal:       subtotal,
		ShippingCost:   d.ShippingCost,
		Total:          subtotal.Add(d.ShippingCost),
		Shipping:       d.Shipping,
		PaymentMethod:  d.PaymentMethod,
		Contact:        d.Contact,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.setState(pendingState{})
	return o, nil
}

func (o *Order) InventoryReserved() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnInventoryReserved(o) })
}

func (o *Order) InventoryReservationFailed(reason string) error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnInventoryFailed(o, reason) })
}

func (o *Order) PaymentSucceeded() error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnPaymentSucceeded(o) })
}

func (o *Order) PaymentFailed(reason string) error {
	return o.transition(func(s OrderState) (OrderState, error) { return s.OnPaymentFailed(o, reason) })
}

// CanProcessPayment reports whether stock is held and payment may be attempted.
func (o *Order) CanProcessPayment() bool {
	return o.Status == StatusInventoryReserved || o.Status == StatusPaymentFailed
}

func (o *Order) TotalQuantity() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}

func (o *Order) transition(apply func(OrderState) (OrderState, error)) error {
	next, err := apply(o.currentState())
	if err != nil {
		return err
	}
	o.setState(next)
	o.touch()
	return nil
}

// currentState rebuilds the state object from Status, so orders loaded from
// storage transition the same way as freshly created ones.
func (o *Order) currentState() OrderState {
	if o.state != nil && o.state.Status() == o.Status {
		return o.state
	}
	switch o.Status {
	case StatusInventoryReserved:
		return inventoryReservedState{}
	case StatusInventoryFailed:
		return inventoryFailedState{}
	case StatusCompleted:
		return completedState{}
	case StatusPaymentFailed:
		return paymentFailedState{}
	default:
		return pendingState{}
	}
}

func (o *Order) setState(s OrderState) {
	o.state = s
	o.Status = s.Status()
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
