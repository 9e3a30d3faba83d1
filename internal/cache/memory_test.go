package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"latex-speech/internal/types"
)

func TestKeyNormalizesWhitespace(t *testing.T) {
	a := Key(`\frac{1}{2}  +  x`, types.AudienceUndergraduate, types.DomainCalculus)
	b := Key(`\frac{1}{2} + x`, types.AudienceUndergraduate, types.DomainCalculus)
	assert.Equal(t, a, b)
}

func TestKeyDiscriminates(t *testing.T) {
	base := Key("x + y", types.AudienceUndergraduate, types.DomainAlgebra)

	assert.NotEqual(t, base, Key("x + z", types.AudienceUndergraduate, types.DomainAlgebra))
	assert.NotEqual(t, base, Key("x + y", types.AudienceGraduate, types.DomainAlgebra))
	assert.NotEqual(t, base, Key("x + y", types.AudienceUndergraduate, types.DomainCalculus))
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	key := Key("x + y", types.AudienceUndergraduate, types.DomainAlgebra)

	_, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)

	stored := &types.SpeechText{
		Text:              "X plus y",
		AppliedPatternIDs: []string{"plus"},
		IterationsUsed:    2,
		Converged:         true,
	}
	require.NoError(t, c.Set(context.Background(), key, stored))

	got, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stored, got)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	key := Key("x", types.AudienceUndergraduate, types.DomainAlgebra)

	require.NoError(t, c.Set(context.Background(), key, &types.SpeechText{
		Text:              "X",
		AppliedPatternIDs: []string{"a"},
	}))

	first, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	first.AppliedPatternIDs[0] = "mutated"
	first.Text = "mutated"

	second, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "X", second.Text)
	assert.Equal(t, []string{"a"}, second.AppliedPatternIDs)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	current := time.Now()
	c.now = func() time.Time { return current }

	key := Key("x", types.AudienceUndergraduate, types.DomainAlgebra)
	require.NoError(t, c.Set(context.Background(), key, &types.SpeechText{Text: "X"}))

	_, ok, err := c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok, err = c.Get(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry is evicted on read")
}
