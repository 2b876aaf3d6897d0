package authflow

import (
	"context"
	"encoding/json"
	"sync"
)

// Slot keys used by the flow. One slot holds the registered users list, one
// the single pending verification, one the authenticated session.
const (
	SlotUsers   = "authflow_users_v1"
	SlotPending = "authflow_pending_v1"
	SlotSession = "authflow_session_v1"
)

// MemorySlotStore is a non-durable SlotStore. It backs tests and short-lived
// tools; production callers should use the bun/SQLite store.
type MemorySlotStore struct {
	mu    sync.RWMutex
	slots map[string][]byte
}

var _ SlotStore = (*MemorySlotStore)(nil)

func NewMemorySlotStore() *MemorySlotStore {
	return &MemorySlotStore{slots: map[string][]byte{}}
}

func (m *MemorySlotStore) Get(ctx context.Context, key string, out any) (bool, error) {
	m.mu.RLock()
	raw, ok := m.slots[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		// unreadable state degrades to empty, never a failure
		return false, nil
	}

	return true, nil
}

func (m *MemorySlotStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.slots[key] = raw
	m.mu.Unlock()

	return nil
}

func (m *MemorySlotStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.slots, key)
	m.mu.Unlock()

	return nil
}
