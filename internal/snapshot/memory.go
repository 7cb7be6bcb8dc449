package snapshot

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryTarget keeps snapshots in memory. Safe for concurrent use.
type MemoryTarget struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{files: make(map[string][]byte)}
}

func (m *MemoryTarget) Put(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	return nil
}

// Get returns a stored snapshot.
func (m *MemoryTarget) Get(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	return data, ok
}

// List returns the stored snapshot names in order.
func (m *MemoryTarget) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.files))
	for n := range m.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

var _ Target = (*MemoryTarget)(nil)
