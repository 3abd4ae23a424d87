package resultstore

import (
	"sync"

	"github.com/allaspectsdev/flowcache/internal/engine"
)

// MemoryStore is a non-durable Result Store: a plain map, with side-channel
// kwargs accepted but not acted on (there is nowhere durable to write a
// side-channel file for a store that does not persist). It exists for tests
// and for ephemeral, single-process cache use.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]any)}
}

func (m *MemoryStore) Get(fingerprint string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[fingerprint]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(fingerprint string, value any, _ *engine.SaverKwargs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[fingerprint] = value
	return nil
}

func (m *MemoryStore) Delete(fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, fingerprint)
	return nil
}

func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]any)
	return nil
}

var (
	_ ResultStore = (*SQLiteStore)(nil)
	_ ResultStore = (*MemoryStore)(nil)
)
