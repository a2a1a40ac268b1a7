package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValid(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	tok := Token{Value: "abc", ExpiresAt: now.Add(48 * time.Hour)}

	assert.True(t, tok.Valid(now, 24*time.Hour))
	assert.False(t, tok.Valid(now.Add(24*time.Hour), 24*time.Hour), "inside the refresh window")
	assert.False(t, Token{ExpiresAt: now.Add(time.Hour)}.Valid(now, 0), "empty value")
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "logistics")
	require.NoError(t, err)
	assert.False(t, ok)

	want := Token{Value: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Set(ctx, "logistics", want))
	got, ok, err := store.Get(ctx, "logistics")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, store.Delete(ctx, "logistics"))
	_, ok, _ = store.Get(ctx, "logistics")
	assert.False(t, ok)
}
