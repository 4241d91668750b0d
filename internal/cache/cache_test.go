package cache_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subops/console-realtime/internal/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_GetCachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(testLogger())

	fetches := 0
	fetch := func(ctx context.Context) (any, error) {
		fetches++
		return fetches, nil
	}

	v, err := store.Get(ctx, cache.KeyBalance, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	// Fresh entry: no re-fetch.
	v, err = store.Get(ctx, cache.KeyBalance, fetch)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, fetches)

	store.Invalidate(cache.KeyBalance)

	v, err = store.Get(ctx, cache.KeyBalance, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, fetches)
}

func TestStore_InvalidateIsIdempotent(t *testing.T) {
	store := cache.NewStore(testLogger())

	// Unknown keys and repeated invalidation are no-ops.
	store.Invalidate(cache.KeySubscription)
	store.Invalidate(cache.KeySubscription, cache.KeySubscription, "never-fetched")

	store.Set(cache.KeySubscription, "fresh")
	store.Invalidate(cache.KeySubscription)
	store.Invalidate(cache.KeySubscription)

	_, ok := store.Peek(cache.KeySubscription)
	assert.False(t, ok)
}

func TestStore_FetchErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(testLogger())

	calls := 0
	failing := func(ctx context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("backend down")
		}
		return "ok", nil
	}

	_, err := store.Get(ctx, cache.KeyUser, failing)
	require.Error(t, err)

	v, err := store.Get(ctx, cache.KeyUser, failing)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestStore_ConcurrentFetchesAreDeduplicated(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(testLogger())

	var fetches atomic.Int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		fetches.Add(1)
		<-release
		return "value", nil
	}

	var wg sync.WaitGroup
	results := make([]any, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := store.Get(ctx, cache.KeyTransactions, fetch)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give all goroutines a chance to reach the store, then release.
	require.Eventually(t, func() bool {
		return fetches.Load() == 1
	}, time.Second, time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, fetches.Load())
	for _, v := range results {
		assert.Equal(t, "value", v)
	}
}

func TestStore_SetAndPeek(t *testing.T) {
	store := cache.NewStore(testLogger())

	_, ok := store.Peek(cache.KeyReferralStats)
	assert.False(t, ok)

	store.Set(cache.KeyReferralStats, 42)
	v, ok := store.Peek(cache.KeyReferralStats)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}
