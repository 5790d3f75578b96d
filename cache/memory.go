package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process Store used when no Redis host is configured
// and by tests. Entries share a single TTL fixed at construction; the
// per-call ttl argument is ignored.
type Memory struct {
	lru *expirable.LRU[string, []byte]

	mu       sync.Mutex
	counters map[string]int64
}

// NewMemory creates an in-memory cache holding at most maxEntries items,
// each expiring ttl after insertion.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Memory{
		lru:      expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		counters: make(map[string]int64),
	}
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok := m.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.lru.Add(key, value)
	return nil
}

func (m *Memory) Increment(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return nil
}

func (m *Memory) Close() error {
	return nil
}
