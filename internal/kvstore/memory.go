package kvstore

import (
	"bytes"
	"context"
	"sync"
)

// Memory is an in-process Backend. It is the default for tests and for a
// server started without a persistent store configured.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	size int64
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// NewMemoryStore is a convenience for tests: a Store over a fresh Memory backend.
func NewMemoryStore(opts ...Option) *Store {
	return New(NewMemory(), opts...)
}

func (m *Memory) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return bytes.Clone(v), true, nil
}

func (m *Memory) Apply(_ context.Context, batch []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range batch {
		if old, ok := m.data[w.Key]; ok {
			m.size -= int64(len(w.Key) + len(old))
			delete(m.data, w.Key)
		}
		if w.Delete {
			continue
		}
		m.data[w.Key] = bytes.Clone(w.Value)
		m.size += w.size()
	}
	return nil
}

func (m *Memory) Size(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size, nil
}

func (m *Memory) Close() error { return nil }
