package state

import (
	"context"
	"sync"
)

// NotAvailable is stored when a lookup succeeded but reported no usable address.
const NotAvailable = "not available"

// Store is a durable key/value store holding the last observed address per family.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
	// Close releases the underlying resources.
	Close() error
}

// SetIfChanged writes value only when it differs from the stored one.
// It reports the previous value and whether a write happened.
func SetIfChanged(ctx context.Context, s Store, key, value string) (previous string, changed bool, err error) {
	previous, ok, err := s.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if ok && previous == value {
		return previous, false, nil
	}
	if err := s.Set(ctx, key, value); err != nil {
		return previous, false, err
	}
	return previous, true, nil
}

// Memory is an in-process Store, used by tests and by the check command.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get implements Store
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Store
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Close implements Store
func (m *Memory) Close() error {
	return nil
}

// Snapshot returns a copy of all stored values
func (m *Memory) Snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// All returns a copy of all stored values
func (m *Memory) All(_ context.Context) (map[string]string, error) {
	return m.Snapshot(), nil
}
