package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, Config{Enabled: false, Endpoint: "localhost:4317"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))

	shutdown, err = Init(ctx, Config{Enabled: true})
	require.NoError(t, err)
	assert.NoError(t, shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, "AlwaysOffSampler", samplerFor(0).Description())
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
