// Package cache keeps short-lived copies of invoice list views. Every
// invoice mutation calls Invalidate so the next read goes to the store.
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ViewCache stores views per generation. Get reports the generation it saw;
// a value computed after that Get is handed back to Set with the same
// generation, so a view read before an Invalidate is never served after it.
type ViewCache interface {
	// Get decodes the cached value for key into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (gen uint64, hit bool, err error)
	Set(ctx context.Context, key string, gen uint64, value any) error
	// Invalidate drops every cached view.
	Invalidate(ctx context.Context) error
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (uint64, bool, error) { return 0, false, nil }
func (Nop) Set(context.Context, string, uint64, any) error         { return nil }
func (Nop) Invalidate(context.Context) error                        { return nil }

type entry struct {
	gen  uint64
	data []byte
}

// Memory is an in-process ViewCache holding at most size entries, each for
// at most ttl. Values are stored JSON-encoded so callers never share slices
// with the cache.
type Memory struct {
	gen     atomic.Uint64
	entries *expirable.LRU[string, entry]
}

func NewMemory(ttl time.Duration, size int) *Memory {
	return &Memory{entries: expirable.NewLRU[string, entry](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (uint64, bool, error) {
	gen := m.gen.Load()
	e, ok := m.entries.Get(key)
	if !ok || e.gen != gen {
		return gen, false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return gen, false, err
	}
	return gen, true, nil
}

// Set drops values computed under an older generation.
func (m *Memory) Set(_ context.Context, key string, gen uint64, value any) error {
	if gen != m.gen.Load() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries.Add(key, entry{gen: gen, data: data})
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.gen.Add(1)
	m.entries.Purge()
	return nil
}

// Len counts live entries.
func (m *Memory) Len() int {
	return m.entries.Len()
}
