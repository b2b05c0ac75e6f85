package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const snapshotVersion = 1

// Snapshot is the on-disk representation of a MemoryAdapter.
type Snapshot struct {
	Version int           `msgpack:"version"`
	SavedAt time.Time     `msgpack:"saved_at"`
	Items   []domain.Item `msgpack:"items"`
}

type memoryEntry struct {
	mu       sync.Mutex
	quantity int
	removed  bool
}

// MemoryAdapter keeps items in a map with one lock per item. The map lock
// only guards the index, so adjusts on different items run in parallel.
// When a snapshot path is set, state is written to disk by Flush.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string]*memoryEntry

	path    string
	dirty   atomic.Bool
	flushMu sync.Mutex
}

func NewMemoryAdapter(snapshotPath string) *MemoryAdapter {
	return &MemoryAdapter{
		items: make(map[string]*memoryEntry),
		path:  snapshotPath,
	}
}

// EnsureSchema loads the snapshot file, creating an empty one on first start.
func (m *MemoryAdapter) EnsureSchema(ctx context.Context) error {
	if m.path == "" {
		return nil
	}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.dirty.Store(true)
		return m.Flush()
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", m.path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range snap.Items {
		if item.Name == "" || item.Quantity < 0 {
			return fmt.Errorf("snapshot %s: corrupt item %+v", m.path, item)
		}
		m.items[item.Name] = &memoryEntry{quantity: item.Quantity}
	}
	return nil
}

func (m *MemoryAdapter) Create(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[name]; ok {
		return fmt.Errorf("create %q: %w", name, domain.ErrAlreadyExists)
	}
	m.items[name] = &memoryEntry{quantity: quantity}
	m.dirty.Store(true)
	return nil
}

func (m *MemoryAdapter) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.items[name]
	if !ok {
		return fmt.Errorf("delete %q: %w", name, domain.ErrNotFound)
	}

	// adjusts that already hold a reference see the tombstone
	entry.mu.Lock()
	entry.removed = true
	entry.mu.Unlock()

	delete(m.items, name)
	m.dirty.Store(true)
	return nil
}

func (m *MemoryAdapter) SetQuantity(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	entry := m.lookup(name)
	if entry == nil {
		return fmt.Errorf("set quantity %q: %w", name, domain.ErrNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed {
		return fmt.Errorf("set quantity %q: %w", name, domain.ErrNotFound)
	}
	entry.quantity = quantity
	m.dirty.Store(true)
	return nil
}

func (m *MemoryAdapter) Adjust(ctx context.Context, name string, delta int) (int, error) {
	entry := m.lookup(name)
	if entry == nil {
		return 0, fmt.Errorf("adjust %q: %w", name, domain.ErrNotFound)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.removed {
		return 0, fmt.Errorf("adjust %q: %w", name, domain.ErrNotFound)
	}

	next, err := domain.ApplyDelta(entry.quantity, delta)
	if err != nil {
		return entry.quantity, fmt.Errorf("adjust %q: %w", name, err)
	}
	entry.quantity = next
	m.dirty.Store(true)
	return next, nil
}

func (m *MemoryAdapter) List(ctx context.Context) ([]domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.Item, 0, len(m.items))
	for name, entry := range m.items {
		entry.mu.Lock()
		items = append(items, domain.Item{Name: name, Quantity: entry.quantity})
		entry.mu.Unlock()
	}
	return items, nil
}

// Flush writes the current state to the snapshot file if anything changed
// since the last flush. The file is replaced atomically.
func (m *MemoryAdapter) Flush() error {
	if m.path == "" {
		return nil
	}

	m.flushMu.Lock()
	defer m.flushMu.Unlock()

	if !m.dirty.Swap(false) {
		return nil
	}

	items, _ := m.List(context.Background())
	data, err := msgpack.Marshal(Snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now().UTC(),
		Items:   items,
	})
	if err != nil {
		m.dirty.Store(true)
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := writeFileAtomic(m.path, data); err != nil {
		m.dirty.Store(true)
		return err
	}
	return nil
}

// Run flushes the snapshot every interval until ctx is done, then flushes
// one last time. Periodic flush failures are passed to onError and retried
// on the next tick.
func (m *MemoryAdapter) Run(ctx context.Context, interval time.Duration, onError func(error)) error {
	if m.path == "" || interval <= 0 {
		<-ctx.Done()
		return m.Flush()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return m.Flush()
		case <-ticker.C:
			if err := m.Flush(); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}

func (m *MemoryAdapter) Close() error {
	return m.Flush()
}

func (m *MemoryAdapter) lookup(name string) *memoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[name]
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}
