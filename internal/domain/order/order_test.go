package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draft() Draft {
	return Draft{
		ID:         "o1",
		CustomerID: "u1",
		StoreID:    "casa-borda",
		Lines: []Line{
			{ProductID: "p1", Title: "Cemento", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
			{ProductID: "p2", Title: "Arena", UnitPrice: decimal.NewFromInt(50), Quantity: 1},
		},
		Shipping:      ShippingExpress,
		ShippingCost:  decimal.NewFromInt(6500),
		PaymentMethod: PaymentCredit,
		Contact:       Contact{FullName: "Juan Pérez", Phone: "+54 9 11 1234 5678", Address: "Av. Corrientes 1234"},
	}
}

func TestNewComputesTotals(t *testing.T) {
	o, err := New(draft())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.Lines[0].Subtotal.Equal(decimal.NewFromInt(200)))
	assert.True(t, o.Subtotal.Equal(decimal.NewFromInt(250)))
	assert.True(t, o.Total.Equal(decimal.NewFromInt(6750)))
	assert.Equal(t, 3, o.TotalQuantity())
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		want   error
	}{
		{"no lines", func(d *Draft) { d.Lines = nil }, ErrNoLines},
		{"bad shipping", func(d *Draft) { d.Shipping = "drone" }, ErrInvalidShipping},
		{"bad payment", func(d *Draft) { d.PaymentMethod = "barter" }, ErrInvalidPaymentMethod},
		{"missing contact", func(d *Draft) { d.Contact.Phone = " " }, ErrInvalidContact},
		{"zero quantity", func(d *Draft) { d.Lines[0].Quantity = 0 }, ErrInvalidQuantity},
		{"negative shipping", func(d *Draft) { d.ShippingCost = decimal.NewFromInt(-1) }, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft()
			tt.mutate(&d)
			_, err := New(d)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestHappyPathTransitions(t *testing.T) {
	o, err := New(draft())
	require.NoError(t, err)

	assert.False(t, o.CanProcessPayment())
	require.NoError(t, o.InventoryReserved())
	assert.Equal(t, StatusInventoryReserved, o.Status)
	assert.True(t, o.CanProcessPayment())

	require.NoError(t, o.PaymentFailed("payment_declined"))
	assert.Equal(t, StatusPaymentFailed, o.Status)
	assert.Equal(t, "payment_declined", o.FailureReason)

	require.NoError(t, o.PaymentSucceeded())
	assert.Equal(t, StatusCompleted, o.Status)
	assert.Empty(t, o.FailureReason)
}

func TestRejectedTransitions(t *testing.T) {
	o, err := New(draft())
	require.NoError(t, err)

	assert.ErrorIs(t, o.PaymentSucceeded(), ErrInvalidStateTransition)

	require.NoError(t, o.InventoryReservationFailed("insufficient_stock"))
	assert.Equal(t, StatusInventoryFailed, o.Status)
	assert.ErrorIs(t, o.InventoryReserved(), ErrInvalidStateTransition)
	assert.ErrorIs(t, o.PaymentFailed("x"), ErrInvalidStateTransition)
	assert.Equal(t, StatusInventoryFailed, o.Status)
}

func TestTransitionsResumeFromPersistedStatus(t *testing.T) {
	o := &Order{ID: "o1", Status: StatusInventoryReserved}
	require.NoError(t, o.PaymentSucceeded())
	assert.Equal(t, StatusCompleted, o.Status)
}

func TestCloneCopiesLines(t *testing.T) {
	o, err := New(draft())
	require.NoError(t, err)
	c := o.Clone()
	c.Lines[0].Quantity = 99
	assert.Equal(t, 2, o.Lines[0].Quantity)
}
