package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterBlocksAfterMaxAttempts(t *testing.T) {
	l := NewMemoryLimiter(Limit{Window: 15 * time.Minute, MaxAttempts: 3})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1|ivan@example.com")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}

	ok, err := l.Allow(ctx, "10.0.0.1|ivan@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2|ivan@example.com")
	require.NoError(t, err)
	assert.True(t, ok, "identifiers are limited separately")
}
