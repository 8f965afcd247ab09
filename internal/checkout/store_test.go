package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgredis "github.com/angelmondragon/storefront-checkout/pkg/redis"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) CheckoutSessionKey(sessionID string) string {
	return "sf:checkout:session:" + sessionID
}

func (f *fakeRedis) GetBytes(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return raw, nil
}

func (f *fakeRedis) WatchUpdate(_ context.Context, key string, ttl time.Duration, fn pkgredis.UpdateFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, err := fn(f.data[key])
	if err != nil {
		return err
	}
	f.data[key] = next
	f.ttls[key] = ttl
	return nil
}

func TestRedisSessionStoreRoundTrip(t *testing.T) {
	backend := newFakeRedis()
	store, err := NewRedisSessionStore(backend, 2*time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	state := NewState("sess-redis", uuid.New(), sampleItems(), time.Now().UTC())
	require.NoError(t, store.Create(ctx, state))
	assert.Error(t, store.Create(ctx, state), "duplicate create must fail")
	assert.Equal(t, 2*time.Hour, backend.ttls["sf:checkout:session:sess-redis"])

	loaded, err := store.Get(ctx, "sess-redis")
	require.NoError(t, err)
	assert.Equal(t, state.UserID, loaded.UserID)
	assert.True(t, loaded.Subtotal.Equal(state.Subtotal))

	updated, err := store.Update(ctx, "sess-redis", func(st State) (State, error) {
		return st.SelectAddress(sampleAddress(-6.26)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), updated.DeliveryGeneration)

	reloaded, err := store.Get(ctx, "sess-redis")
	require.NoError(t, err)
	require.NotNil(t, reloaded.Address)
	assert.True(t, reloaded.DeliveryLoading)
}

func TestSessionStoresReportMissingSessions(t *testing.T) {
	redisStore, err := NewRedisSessionStore(newFakeRedis(), time.Hour)
	require.NoError(t, err)

	for name, store := range map[string]SessionStore{
		"redis":  redisStore,
		"memory": NewMemorySessionStore(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "missing")
			assert.ErrorIs(t, err, ErrSessionNotFound)

			_, err = store.Update(context.Background(), "missing", func(st State) (State, error) { return st, nil })
			assert.ErrorIs(t, err, ErrSessionNotFound)
		})
	}
}

func TestNewRedisSessionStoreValidates(t *testing.T) {
	_, err := NewRedisSessionStore(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewRedisSessionStore(newFakeRedis(), 0)
	assert.Error(t, err)
}
