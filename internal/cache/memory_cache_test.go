package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptbattle/internal/model"
)

func TestMemoryEvalCacheSetGet(t *testing.T) {
	t.Parallel()
	c := NewMemoryEvalCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	eval := &model.Evaluation{Clarity: 80, Feedback: "good"}
	c.Set(ctx, "k1", eval)

	got, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, 80, got.Clarity)
	assert.Equal(t, "good", got.Feedback)

	// The cache hands out copies, not the stored pointer.
	got.Clarity = 0
	again, ok := c.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, 80, again.Clarity)
}

func TestMemoryEvalCacheEvictsOldest(t *testing.T) {
	t.Parallel()
	c := NewMemoryEvalCache()
	ctx := context.Background()

	for i := 0; i < memoryCacheMax; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), &model.Evaluation{Clarity: i})
	}
	_, ok := c.Get(ctx, "k0")
	require.True(t, ok)

	c.Set(ctx, "overflow", &model.Evaluation{Clarity: 1})

	_, ok = c.Get(ctx, "k0")
	assert.False(t, ok, "oldest entry is evicted when full")
	_, ok = c.Get(ctx, "k1")
	assert.True(t, ok)
	_, ok = c.Get(ctx, "overflow")
	assert.True(t, ok)
}

func TestMemoryEvalCacheOverwriteKeepsSize(t *testing.T) {
	t.Parallel()
	c := NewMemoryEvalCache()
	ctx := context.Background()

	c.Set(ctx, "k", &model.Evaluation{Clarity: 1})
	c.Set(ctx, "k", &model.Evaluation{Clarity: 2})

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2, got.Clarity)
}
