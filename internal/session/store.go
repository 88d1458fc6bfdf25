package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MemoryStore keeps sessions in process memory. Entries idle longer than
// the TTL are dropped on access.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	state   State
	touched time.Time
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, id string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return Default(), nil
	}
	if m.ttl > 0 && m.now().Sub(e.touched) > m.ttl {
		delete(m.entries, id)
		return Default(), nil
	}
	e.touched = m.now()
	m.entries[id] = e
	return e.state, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{state: st, touched: m.now()}
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dropped := 0
	for id, e := range m.entries {
		if m.now().Sub(e.touched) > m.ttl {
			delete(m.entries, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("expired sessions swept", "count", n)
			}
		}
	}
}

// RedisStore keeps sessions in Redis as JSON with a sliding TTL, so several
// server instances can share them.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store using client.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: "catalogo:session:", ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, id string) (State, error) {
	val, err := r.client.GetEx(ctx, r.prefix+id, r.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return Default(), nil
	}
	if err != nil {
		return Default(), fmt.Errorf("session load: %w", err)
	}

	var st State
	if err := json.Unmarshal(val, &st); err != nil {
		return Default(), nil
	}
	if _, err := ParsePage(string(st.Page)); err != nil {
		st.Page = PageHome
	}
	return st, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, st State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	if err := r.client.Set(ctx, r.prefix+id, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
