package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrLoad_LoadsOnceForConcurrentCallers(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "rules", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "scoring:rules", loader)
			assert.NoError(t, err)
			assert.Equal(t, "rules", v)
		}()
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	store.Set(ctx, "players:all", 42)
	v, ok := store.Get(ctx, "players:all")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	now = now.Add(time.Minute)
	_, ok = store.Get(ctx, "players:all")
	assert.False(t, ok)
}

func TestStore_LoadErrorIsNotCached(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()
	boom := errors.New("db down")

	_, err := store.GetOrLoad(ctx, "k", func(context.Context) (any, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := store.GetOrLoad(ctx, "k", func(context.Context) (any, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	ctx := context.Background()
	store.Set(ctx, "players:id:mahomes", 1)
	store.Set(ctx, "players:id:allen", 2)
	store.Set(ctx, "scoring:rules", 3)

	store.DeletePrefix(ctx, "players:")

	_, ok := store.Get(ctx, "players:id:allen")
	assert.False(t, ok)
	_, ok = store.Get(ctx, "scoring:rules")
	assert.True(t, ok)
}
