package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"olaaf-go/internal/olaaf"
)

type memorySnapshot struct {
	data    []byte
	version int64
}

// MemoryVault keeps the latest snapshot per name in memory. Used by tests
// and dry runs; safe for concurrent use.
type MemoryVault struct {
	name string

	mu        sync.RWMutex
	snapshots map[string]memorySnapshot
}

var _ olaaf.Vault = (*MemoryVault)(nil)

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{name: name, snapshots: make(map[string]memorySnapshot)}
}

func (m *MemoryVault) PutSnapshot(name string, r io.Reader, size int64, version int64) error {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}
	if n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, n)
	}

	m.mu.Lock()
	m.snapshots[name] = memorySnapshot{data: buf.Bytes(), version: version}
	m.mu.Unlock()
	return nil
}

func (m *MemoryVault) GetSnapshot(name string, w io.Writer) error {
	m.mu.RLock()
	snap, ok := m.snapshots[name]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("snapshot %q not found in vault %s", name, m.name)
	}
	if _, err := w.Write(snap.data); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) GetSnapshotVersion(name string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[name].version, nil
}

func (m *MemoryVault) ValidateSetup() error { return nil }
