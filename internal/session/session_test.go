package session

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartentrance/internal/models"
)

var backendURL, _ = url.Parse("http://backend.local/api")

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value.([]byte))
	f.ttl[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

var ivan = models.User{ID: 1, Email: "ivan@example.com", Role: models.UserRoleManager}

func TestStores(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(newFakeRedis()),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := New(ivan, time.Hour)
			s.BackendCookies = []Cookie{{Name: "connect.sid", Value: "abc"}}

			require.NoError(t, store.Save(ctx, s))

			got, err := store.Get(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, s.Email, got.Email)
			assert.Equal(t, s.BackendCookies, got.BackendCookies)
			assert.True(t, got.IsManager())

			require.NoError(t, store.Delete(ctx, s.ID))
			_, err = store.Get(ctx, s.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisStoreUsesRemainingLifetime(t *testing.T) {
	kv := newFakeRedis()
	store := NewRedisStore(kv)
	s := New(ivan, time.Hour)

	require.NoError(t, store.Save(context.Background(), s))
	ttl := kv.ttl["session:"+s.ID]
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	s.ExpiresAt = time.Now().Add(-time.Second)
	assert.Error(t, store.Save(context.Background(), s))
}

func TestMemoryStoreHidesExpired(t *testing.T) {
	store := NewMemoryStore()
	s := New(ivan, -time.Minute)
	require.NoError(t, store.Save(context.Background(), s))

	_, err := store.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJarReplaysAndCapturesCookies(t *testing.T) {
	s := New(ivan, time.Hour)
	s.BackendCookies = []Cookie{{Name: "connect.sid", Value: "abc"}}

	jar := NewJar(backendURL, s.BackendCookies)
	assert.False(t, s.Capture(jar, backendURL))

	jar.SetCookies(backendURL, []*http.Cookie{{Name: "connect.sid", Value: "rotated", Path: "/"}})
	assert.True(t, s.Capture(jar, backendURL))
	assert.Equal(t, []Cookie{{Name: "connect.sid", Value: "rotated"}}, s.BackendCookies)
}

func TestEmptyJar(t *testing.T) {
	jar := NewJar(backendURL, nil)
	assert.Empty(t, FromJar(jar, backendURL))
}
