// Package kv abstracts the shared string-keyed storage the alert store and the
// telemetry cache persist into. Backends hold whole JSON blobs per key; there
// is no partial update and no locking across writers.
package kv

import (
	"errors"
	"sync"
)

var (
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrUnavailable   = errors.New("storage unavailable")
)

type Store interface {
	// Get returns ok=false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStore is an in-process Store. A positive Quota caps the summed size of
// keys and values in bytes, mimicking browser storage limits.
type MemoryStore struct {
	mu    sync.RWMutex
	data  map[string]string
	Quota int
	// Broken makes every operation fail with ErrUnavailable.
	Broken bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.Broken {
		return "", false, ErrUnavailable
	}
	value, ok := m.data[key]
	return value, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Broken {
		return ErrUnavailable
	}

	if m.Quota > 0 {
		size := len(key) + len(value)
		for k, v := range m.data {
			if k != key {
				size += len(k) + len(v)
			}
		}
		if size > m.Quota {
			return ErrQuotaExceeded
		}
	}

	m.data[key] = value
	return nil
}

func (m *MemoryStore) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Broken {
		return ErrUnavailable
	}
	delete(m.data, key)
	return nil
}

// Size is the summed byte size of keys and values currently held.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	size := 0
	for k, v := range m.data {
		size += len(k) + len(v)
	}
	return size
}
