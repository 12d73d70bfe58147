package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracer_NoCollectorIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "jobscout-test", "")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))

	_, span := GetTracer("test").Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, "run.id", string(String("run.id", "x").Key))
	assert.Equal(t, int64(3), Int("count", 3).Value.AsInt64())
	assert.True(t, Bool("ok", true).Value.AsBool())
}
