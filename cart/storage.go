package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// State is the durable snapshot of one session's cart.
type State struct {
	Lines       []Line `json:"lines"`
	TableNumber string `json:"table_number,omitempty"`
}

// Storage persists a single session's cart. Load on a session that has
// never saved returns an empty state, not an error.
type Storage interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// Provider hands out the storage bound to a session key.
type Provider interface {
	ForSession(key string) Storage
}

// ---------------------------------------------------------------------------
// Redis-backed storage. One JSON blob per session with a sliding TTL, the
// server-side stand-in for the browser's local storage.

type RedisProvider struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{Client: client, TTL: 24 * time.Hour}
}

func (p *RedisProvider) ForSession(key string) Storage {
	return &redisStorage{client: p.Client, key: "cart:" + key, ttl: p.TTL}
}

type redisStorage struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (r *redisStorage) Load(ctx context.Context) (State, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load cart %s: %w", r.key, err)
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("decode cart %s: %w", r.key, err)
	}
	return state, nil
}

func (r *redisStorage) Save(ctx context.Context, state State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, raw, r.ttl).Err()
}

// ---------------------------------------------------------------------------
// In-memory storage for tests and single-node deployments without Redis.

type MemoryProvider struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{states: make(map[string]State)}
}

func (p *MemoryProvider) ForSession(key string) Storage {
	return &memoryStorage{provider: p, key: key}
}

type memoryStorage struct {
	provider *MemoryProvider
	key      string
}

func (m *memoryStorage) Load(_ context.Context) (State, error) {
	m.provider.mu.Lock()
	defer m.provider.mu.Unlock()
	return m.provider.states[m.key], nil
}

func (m *memoryStorage) Save(_ context.Context, state State) error {
	m.provider.mu.Lock()
	defer m.provider.mu.Unlock()
	m.provider.states[m.key] = state
	return nil
}
