package zaplogger

import (
	"errors"
	"testing"

	"github.com/Zhima-Mochi/corralon-storefront/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := New(zap.New(core), observability.F("service", "cart-service"))

	l.With(observability.F("use_case", "cart.add_item")).Info("use_case_done",
		observability.F("outcome", "success"),
		observability.F("error", errors.New("boom")),
	)
	l.Debug("dbg")

	require.Equal(t, 2, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "use_case_done", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "cart-service", fields["service"])
	assert.Equal(t, "cart.add_item", fields["use_case"])
	assert.Equal(t, "success", fields["outcome"])
	assert.Equal(t, "boom", fields["error"])
}

func TestNewWithNilLogger(t *testing.T) {
	l := New(nil)
	assert.NotPanics(t, func() { l.Warn("quiet") })
}
