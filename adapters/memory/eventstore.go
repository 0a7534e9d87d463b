// Package memory provides in-memory implementations of the local store
// ports, used for tests and for serving without a database file.
package memory

import (
	"context"
	"sync"

	"github.com/jihun-01/scratcha-dashboard/domain/usage"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// EventStore is an in-memory implementation of ports.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events []usage.Event
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Replace swaps the stored pool. The slice is copied so later mutation by
// the caller cannot reach the store.
func (s *EventStore) Replace(ctx context.Context, events []usage.Event) error {
	cp := make([]usage.Event, len(events))
	copy(cp, events)
	usage.SortNewestFirst(cp)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = cp
	return nil
}

// List returns a copy of the full pool, newest first.
func (s *EventStore) List(ctx context.Context) ([]usage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp := make([]usage.Event, len(s.events))
	copy(cp, s.events)
	return cp, nil
}

// Count returns the pool size.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

var _ ports.EventStore = (*EventStore)(nil)

// SettingsStore is an in-memory implementation of ports.SettingsStore.
type SettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSettingsStore creates an empty in-memory settings store.
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: make(map[string]string)}
}

// Get returns the stored value, or "" when the name is unset.
func (s *SettingsStore) Get(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name], nil
}

// Set stores a value.
func (s *SettingsStore) Set(ctx context.Context, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
	return nil
}

// Delete removes a value.
func (s *SettingsStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, name)
	return nil
}

var _ ports.SettingsStore = (*SettingsStore)(nil)
