package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedLinks struct {
	WhatsApp string `json:"whatsapp"`
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "k", cachedLinks{WhatsApp: "https://wa.me/?text=x"}, time.Minute))

	var got cachedLinks
	found, err := store.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://wa.me/?text=x", got.WhatsApp)
}

func TestMemoryStoreMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	found, err := store.Get(ctx, "missing", nil)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "short", []byte("png"), time.Second))
	now = now.Add(2 * time.Second)

	found, err = store.Get(ctx, "short", nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStoreBytesAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "qr", []byte{0x89, 'P', 'N', 'G'}, 0))

	var data []byte
	found, err := store.Get(ctx, "qr", &data)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	require.NoError(t, store.Del(ctx, "qr"))
	found, _ = store.Get(ctx, "qr", nil)
	assert.False(t, found)
}

func TestMemoryStoreRejectsUnmarshalableValue(t *testing.T) {
	err := NewMemoryStore().Set(context.Background(), "bad", make(chan int), time.Minute)
	assert.Error(t, err)
}
