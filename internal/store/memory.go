package store

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/spikeview/internal/canon"
)

var errClosed = errors.New("backend closed")

// MemoryBackend keeps objects in a map. It counts physical writes so tests
// can assert deduplication.
type MemoryBackend struct {
	mu     sync.RWMutex
	blobs  map[canon.Address][]byte
	writes int
	closed bool
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{blobs: make(map[canon.Address][]byte)}
}

func (m *MemoryBackend) Has(ctx context.Context, addr canon.Address) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return false, errClosed
	}
	_, ok := m.blobs[addr]
	return ok, nil
}

func (m *MemoryBackend) Write(ctx context.Context, addr canon.Address, data []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false, errClosed
	}
	if _, ok := m.blobs[addr]; ok {
		return false, nil
	}
	m.blobs[addr] = append([]byte(nil), data...)
	m.writes++
	return true, nil
}

func (m *MemoryBackend) Read(ctx context.Context, addr canon.Address) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, false, errClosed
	}
	data, ok := m.blobs[addr]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

// Writes returns the number of objects physically written.
func (m *MemoryBackend) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Len returns the number of stored objects.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
