package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	pstat "github.com/Zhima-Mochi/corralon-storefront/internal/domain/payment"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderIDRequired = errors.New("payment: order id is required")
	ErrInvalidAmount   = errors.New("payment: amount must be zero or greater")
)

// Simulator approves a configurable share of charges at random. It stands in
// for a card gateway.
type Simulator struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
}

func NewSimulator(successRate float64) *Simulator {
	s := &Simulator{random: rand.New(rand.NewSource(time.Now().UnixNano()))}
	s.SetSuccessRate(successRate)
	return s
}

func (s *Simulator) Pay(ctx context.Context, orderID string, amount decimal.Decimal) (pstat.Status, error) {
	if orderID == "" {
		return pstat.StatusFailed, ErrOrderIDRequired
	}
	if amount.IsNegative() {
		return pstat.StatusFailed, ErrInvalidAmount
	}
	// respect cancellation even though this is mocked
	if err := ctx.Err(); err != nil {
		return pstat.StatusFailed, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.random.Float64() < s.successRate {
		return pstat.StatusSuccess, nil
	}
	return pstat.StatusFailed, nil
}

// SetSuccessRate clamps rate to [0, 1].
func (s *Simulator) SetSuccessRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case rate < 0:
		rate = 0
	case rate > 1:
		rate = 1
	}
	s.successRate = rate
}

func (s *Simulator) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successRate
}
