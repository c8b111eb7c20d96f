package registry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tbxark/voiceform/form"
)

type memoryEntry struct {
	receipt *Receipt
	reg     form.Registration
}

// MemoryRegistry keeps submissions in process memory.
type MemoryRegistry struct {
	mu       sync.Mutex
	hospital string
	now      func() time.Time
	entries  map[string]memoryEntry
	counters map[string]int
}

func NewMemoryRegistry(opts ...Option) *MemoryRegistry {
	cfg := buildOpts(opts)
	return &MemoryRegistry{
		hospital: cfg.Hospital,
		now:      cfg.Now,
		entries:  map[string]memoryEntry{},
		counters: map[string]int{},
	}
}

func (m *MemoryRegistry) Submit(ctx context.Context, reg form.Registration) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	day := m.hospital + ":" + now.Format(dayLayout)
	m.counters[day]++
	receipt := newReceipt(uuid.NewString(), m.hospital, m.counters[day], reg, now)
	m.entries[receipt.ID] = memoryEntry{receipt: receipt, reg: reg}
	slog.Debug("MemoryRegistry Submit succeeded", "id", receipt.ID, "token", receipt.Token)
	copied := *receipt
	return &copied, nil
}

func (m *MemoryRegistry) Get(ctx context.Context, id string) (*Receipt, form.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok {
		return nil, form.Registration{}, ErrNotFound
	}
	copied := *entry.receipt
	return &copied, entry.reg, nil
}

func (m *MemoryRegistry) Close() error {
	return nil
}

var _ Registry = (*MemoryRegistry)(nil)
