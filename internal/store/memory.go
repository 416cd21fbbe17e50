package store

import (
	"fmt"
	"sync"

	"github.com/rohmanhakim/newsfeed/pkg/failure"
)

// MemoryStore is an in-memory implementation of the Store port.
// It uses a map for storage and provides thread-safe operations via RWMutex.
//
// Values live only for the lifetime of the process. An optional byte quota
// mirrors the capacity limit of origin-scoped browser storage: the sum of
// key and value lengths may not exceed it.
type MemoryStore struct {
	mu       sync.RWMutex
	data     map[string]string
	quota    int
	disabled bool
}

// NewMemoryStore creates an empty store without a quota.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithQuota(0)
}

// NewMemoryStoreWithQuota creates an empty store holding at most quota bytes.
// A quota of zero or less means unlimited.
func NewMemoryStoreWithQuota(quota int) *MemoryStore {
	return &MemoryStore{
		data:  make(map[string]string),
		quota: quota,
	}
}

func (m *MemoryStore) Read(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.disabled {
		return "", false
	}
	value, exists := m.data[key]
	return value, exists
}

func (m *MemoryStore) Write(key string, value string) failure.ClassifiedError {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disabled {
		return &StoreError{
			Message:   "memory store is disabled",
			Retryable: false,
			Cause:     ErrCauseUnavailable,
			Key:       key,
		}
	}

	if m.quota > 0 {
		used := m.usedBytesLocked()
		if old, ok := m.data[key]; ok {
			used -= len(key) + len(old)
		}
		if need := used + len(key) + len(value); need > m.quota {
			return &StoreError{
				Message:   fmt.Sprintf("need %d bytes, quota is %d", need, m.quota),
				Retryable: false,
				Cause:     ErrCauseQuotaExceeded,
				Key:       key,
			}
		}
	}

	m.data[key] = value
	return nil
}

// SetDisabled toggles simulated storage unavailability.
// While disabled every Read is absent and every Write fails; stored data is kept.
func (m *MemoryStore) SetDisabled(disabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.disabled = disabled
}

// Clear removes all entries.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = make(map[string]string)
}

// Size returns the number of entries.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

// Close is a no-op so MemoryStore satisfies ClosableStore.
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) usedBytesLocked() int {
	total := 0
	for k, v := range m.data {
		total += len(k) + len(v)
	}
	return total
}
