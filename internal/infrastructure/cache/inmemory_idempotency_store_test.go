package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Claim(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		ok, err := store.Claim(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.Claim(ctx, "key-1", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok, "second claim of a live key")
	})

	t.Run("expired keys can be claimed again", func(t *testing.T) {
		ok, err := store.Claim(ctx, "key-2", 10*time.Millisecond)
		require.NoError(t, err)
		require.True(t, ok)

		time.Sleep(20 * time.Millisecond)

		ok, err = store.Claim(ctx, "key-2", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("released keys can be claimed again", func(t *testing.T) {
		ok, err := store.Claim(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, store.Release(ctx, "key-3"))

		ok, err = store.Claim(ctx, "key-3", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestInMemoryIdempotencyStore_Cleanup(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()
	ctx := context.Background()

	_, _ = store.Claim(ctx, "short-1", 10*time.Millisecond)
	_, _ = store.Claim(ctx, "short-2", 10*time.Millisecond)
	_, _ = store.Claim(ctx, "long", time.Hour)
	assert.Equal(t, 3, store.Size())

	time.Sleep(20 * time.Millisecond)
	store.cleanup()

	assert.Equal(t, 1, store.Size())
}

func TestInMemoryIdempotencyStore_BackgroundSweep(t *testing.T) {
	store := newInMemoryIdempotencyStore(5 * time.Millisecond)
	defer store.Close()

	_, _ = store.Claim(context.Background(), "k", time.Millisecond)
	assert.Eventually(t, func() bool { return store.Size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestInMemoryIdempotencyStore_ConcurrentClaims(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	defer store.Close()

	const workers = 100
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Claim(context.Background(), "same-key", time.Hour)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestInMemoryIdempotencyStore_Close(t *testing.T) {
	store := NewInMemoryIdempotencyStore()
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
