package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	pkgredis "github.com/angelmondragon/storefront-checkout/pkg/redis"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("checkout session not found")

// Mutator produces the next state from the current one.
type Mutator func(State) (State, error)

// SessionStore persists checkout sessions. Update applies fn atomically with respect to
// other writers of the same session.
type SessionStore interface {
	Create(ctx context.Context, state State) error
	Get(ctx context.Context, id string) (State, error)
	Update(ctx context.Context, id string, fn Mutator) (State, error)
}

type redisBackend interface {
	CheckoutSessionKey(sessionID string) string
	GetBytes(ctx context.Context, key string) ([]byte, error)
	WatchUpdate(ctx context.Context, key string, ttl time.Duration, fn pkgredis.UpdateFunc) error
}

// RedisSessionStore keeps sessions as JSON documents with a sliding TTL.
type RedisSessionStore struct {
	client redisBackend
	ttl    time.Duration
}

// NewRedisSessionStore builds a Redis-backed store.
func NewRedisSessionStore(client redisBackend, ttl time.Duration) (*RedisSessionStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &RedisSessionStore{client: client, ttl: ttl}, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	return s.client.WatchUpdate(ctx, s.client.CheckoutSessionKey(state.ID), s.ttl, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, fmt.Errorf("checkout session %s already exists", state.ID)
		}
		return payload, nil
	})
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (State, error) {
	raw, err := s.client.GetBytes(ctx, s.client.CheckoutSessionKey(id))
	if errors.Is(err, redis.Nil) {
		return State{}, ErrSessionNotFound
	}
	if err != nil {
		return State{}, err
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode checkout session: %w", err)
	}
	return state, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, id string, fn Mutator) (State, error) {
	var next State
	err := s.client.WatchUpdate(ctx, s.client.CheckoutSessionKey(id), s.ttl, func(current []byte) ([]byte, error) {
		if current == nil {
			return nil, ErrSessionNotFound
		}
		var state State
		if err := json.Unmarshal(current, &state); err != nil {
			return nil, fmt.Errorf("decode checkout session: %w", err)
		}
		updated, err := fn(state)
		if err != nil {
			return nil, err
		}
		next = updated
		return json.Marshal(updated)
	})
	if err != nil {
		return State{}, err
	}
	return next, nil
}

// MemorySessionStore is an in-process store for tests and single-node dev.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: map[string][]byte{}}
}

func (m *MemorySessionStore) Create(_ context.Context, state State) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[state.ID]; exists {
		return fmt.Errorf("checkout session %s already exists", state.ID)
	}
	m.sessions[state.ID] = payload
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(id)
}

func (m *MemorySessionStore) Update(_ context.Context, id string, fn Mutator) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, err := m.load(id)
	if err != nil {
		return State{}, err
	}
	next, err := fn(state)
	if err != nil {
		return State{}, err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return State{}, err
	}
	m.sessions[id] = payload
	return next, nil
}

// load round-trips through JSON so callers never share memory with the stored copy.
func (m *MemorySessionStore) load(id string) (State, error) {
	raw, ok := m.sessions[id]
	if !ok {
		return State{}, ErrSessionNotFound
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, err
	}
	return state, nil
}
