// Package store persists the widget's durable local state: the visitor
// email and the active conversation id, which must survive a reload.
package store

import "sync"

// Keys for the two durable entries.
const (
	KeyVisitorEmail   = "visitorEmail"
	KeyConversationID = "conversationId"
)

// Store is a small durable key/value surface. Get reports presence
// explicitly so an empty value and a missing key are distinguishable.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Memory is an in-memory Store used in tests and as a fallback when no
// storage path is configured.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *Memory) Close() error { return nil }
