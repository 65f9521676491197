package payment

import (
	"context"
	"testing"

	pstat "github.com/Zhima-Mochi/corralon-storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorExtremes(t *testing.T) {
	ctx := context.Background()
	amount := decimal.NewFromInt(100)

	always := NewSimulator(1)
	never := NewSimulator(0)
	for i := 0; i < 20; i++ {
		st, err := always.Pay(ctx, "o1", amount)
		require.NoError(t, err)
		assert.Equal(t, pstat.StatusSuccess, st)

		st, err = never.Pay(ctx, "o1", amount)
		require.NoError(t, err)
		assert.Equal(t, pstat.StatusFailed, st)
	}
}

func TestSimulatorRejectsBadInput(t *testing.T) {
	s := NewSimulator(1)
	_, err := s.Pay(context.Background(), "", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrOrderIDRequired)

	_, err = s.Pay(context.Background(), "o1", decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Pay(ctx, "o1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetSuccessRateClamps(t *testing.T) {
	s := NewSimulator(7)
	assert.Equal(t, 1.0, s.SuccessRate())
	s.SetSuccessRate(-3)
	assert.Equal(t, 0.0, s.SuccessRate())
}
