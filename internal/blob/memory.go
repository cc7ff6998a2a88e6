package blob

import (
	"context"
	"io"
	"sort"
	"sync"
)

// Memory keeps objects in a map. Used by tests.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func NewMemory() *Memory { return &Memory{objects: make(map[string][]byte)} }

func (m *Memory) Location() string { return "memory" }

func (m *Memory) Put(ctx context.Context, key string, r io.Reader) error {
	k, err := sanitizeKey(key)
	if err != nil {
		return err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[k] = body
	m.mu.Unlock()
	return ctx.Err()
}

// Get returns a stored object.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}

// Keys lists stored keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
