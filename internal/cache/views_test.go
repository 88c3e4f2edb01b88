package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type profileView struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestGetOrLoad_MissLoadsAndCaches(t *testing.T) {
	store, mr := newRedisStore(t)
	views := NewViews(store, time.Minute, zap.NewNop())

	loads := 0
	load := func(context.Context) (*profileView, error) {
		loads++
		return &profileView{ID: "c1", Count: 6}, nil
	}

	first, err := GetOrLoad(context.Background(), views, CustomerProfileKey("c1"), load)
	require.NoError(t, err)
	second, err := GetOrLoad(context.Background(), views, CustomerProfileKey("c1"), load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("customer:c1:profile"))
}

func TestGetOrLoad_LoadErrorIsNotCached(t *testing.T) {
	store, mr := newRedisStore(t)
	views := NewViews(store, time.Minute, zap.NewNop())
	boom := errors.New("boom")

	_, err := GetOrLoad(context.Background(), views, "customer:c1:profile", func(context.Context) (*profileView, error) {
		return nil, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("customer:c1:profile"))
}

func TestGetOrLoad_CacheDownFallsBackToLoad(t *testing.T) {
	store := new(MockStore)
	views := NewViews(store, time.Minute, zap.NewNop())

	store.On("Get", mock.Anything, "customer:c1:profile").Return(nil, errors.New("dial tcp: refused"))
	store.On("Generation", mock.Anything, "gen:customer:c1").Return(int64(0), errors.New("dial tcp: refused"))

	view, err := GetOrLoad(context.Background(), views, "customer:c1:profile", func(context.Context) (*profileView, error) {
		return &profileView{ID: "c1"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, "c1", view.ID)
	store.AssertNotCalled(t, "SetIfGeneration", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetOrLoad_InvalidationDuringLoadIsNotCached(t *testing.T) {
	store, mr := newRedisStore(t)
	views := NewViews(store, time.Minute, zap.NewNop())
	invalidator := NewInvalidator(store, zap.NewNop())

	stale, err := GetOrLoad(context.Background(), views, CustomerProfileKey("c1"), func(ctx context.Context) (*profileView, error) {
		require.NoError(t, invalidator.Invalidate(ctx, "c1", "o1"))
		return &profileView{ID: "c1", Count: 5}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, stale.Count)
	assert.False(t, mr.Exists("customer:c1:profile"), "a view read before the invalidation is not cached")

	fresh, err := GetOrLoad(context.Background(), views, CustomerProfileKey("c1"), func(context.Context) (*profileView, error) {
		return &profileView{ID: "c1", Count: 6}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 6, fresh.Count)
	assert.True(t, mr.Exists("customer:c1:profile"))
}

func TestGetOrLoad_UnpartitionedKeyUsesPlainSet(t *testing.T) {
	store, mr := newRedisStore(t)
	views := NewViews(store, time.Minute, zap.NewNop())

	_, err := GetOrLoad(context.Background(), views, "standalone", func(context.Context) (*profileView, error) {
		return &profileView{ID: "x"}, nil
	})

	require.NoError(t, err)
	assert.True(t, mr.Exists("standalone"))
}
