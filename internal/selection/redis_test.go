package selection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu      sync.Mutex
	data    map[string]string
	ttl     map[string]time.Duration
	failGet error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
		delete(f.data, k)
		delete(f.ttl, k)
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	if ok {
		f.ttl[key] = expiration
	}
	return redis.NewBoolResult(ok, nil)
}

func TestRedisStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newFakeRedis()
	storage := NewRedisStorage(kv, time.Hour)

	store := NewStore(storage, "sess:tab", nil)
	require.NoError(t, store.SelectBuilding(ctx, blokA))

	assert.Contains(t, kv.data, "selection:sess:tab")
	assert.Equal(t, time.Hour, kv.ttl["selection:sess:tab"])
	assert.Equal(t, BuildingScope{Building: blokA}, NewStore(storage, "sess:tab", nil).Load(ctx))

	require.NoError(t, store.Clear(ctx))
	assert.NotContains(t, kv.data, "selection:sess:tab")
}

func TestRedisStorageMissingKey(t *testing.T) {
	storage := NewRedisStorage(newFakeRedis(), time.Hour)

	_, err := storage.Read(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorageReadError(t *testing.T) {
	kv := newFakeRedis()
	kv.failGet = errors.New("connection refused")
	storage := NewRedisStorage(kv, time.Hour)

	_, err := storage.Read(context.Background(), "tab")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	assert.Equal(t, NoScope{}, NewStore(storage, "tab", nil).Load(context.Background()))
}
