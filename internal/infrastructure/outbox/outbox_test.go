package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/corralon-storefront/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pingEvent struct{ n int }

func (pingEvent) EventName() string { return "test.ping" }

func stop(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, b.Stop(ctx))
}

func TestBusDeliversInPublishOrder(t *testing.T) {
	b := NewBus(nil, Options{})
	var mu sync.Mutex
	var got []int
	b.Subscribe("test.ping", func(_ context.Context, e domoutbox.Event) error {
		mu.Lock()
		got = append(got, e.(pingEvent).n)
		mu.Unlock()
		return nil
	})
	b.Start(context.Background())

	for i := 0; i < 50; i++ {
		require.NoError(t, b.Publish(context.Background(), pingEvent{n: i}))
	}
	stop(t, b)

	require.Len(t, got, 50)
	for i, n := range got {
		assert.Equal(t, i, n)
	}
}

func TestBusFansOutAndSurvivesFailingHandlers(t *testing.T) {
	b := NewBus(nil, Options{Concurrency: 2})
	var calls atomic.Int32
	b.Subscribe("test.ping", func(context.Context, domoutbox.Event) error {
		calls.Add(1)
		return errors.New("boom")
	})
	b.Subscribe("test.ping", func(context.Context, domoutbox.Event) error {
		calls.Add(1)
		panic("handler exploded")
	})
	b.Subscribe("test.ping", func(context.Context, domoutbox.Event) error {
		calls.Add(1)
		return nil
	})
	b.Start(context.Background())

	require.NoError(t, b.Publish(context.Background(), pingEvent{}))
	require.NoError(t, b.Publish(context.Background(), pingEvent{}))
	stop(t, b)

	assert.Equal(t, int32(6), calls.Load())
}

func TestBusRejectsAfterStop(t *testing.T) {
	b := NewBus(nil, Options{})
	b.Start(context.Background())
	stop(t, b)

	err := b.Publish(context.Background(), pingEvent{})
	assert.ErrorIs(t, err, ErrClosed)

	// second stop is a no-op
	stop(t, b)
}

func TestBusStopWithoutStart(t *testing.T) {
	b := NewBus(nil, Options{})
	stop(t, b)
}

func TestBusPublishHonoursContextWhenFull(t *testing.T) {
	b := NewBus(nil, Options{QueueSize: 1})
	require.NoError(t, b.Publish(context.Background(), pingEvent{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Publish(ctx, pingEvent{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	b.Start(context.Background())
	stop(t, b)
}

func TestBusPropagatesSpanContext(t *testing.T) {
	b := NewBus(nil, Options{})
	traceID := trace.TraceID{1, 2, 3}
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     trace.SpanID{4, 5, 6},
		TraceFlags: trace.FlagsSampled,
	})

	seen := make(chan trace.TraceID, 1)
	b.Subscribe("test.ping", func(ctx context.Context, _ domoutbox.Event) error {
		seen <- trace.SpanContextFromContext(ctx).TraceID()
		return nil
	})
	b.Start(context.Background())

	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	require.NoError(t, b.Publish(ctx, pingEvent{}))
	stop(t, b)

	assert.Equal(t, traceID, <-seen)
}
