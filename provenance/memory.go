package provenance

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRecorder is an in-memory Recorder. Data is lost when the process
// exits; intended for tests and short-lived local workflows.
type MemoryRecorder struct {
	mu      sync.RWMutex
	records map[uuid.UUID]CausalityRecord
	byRun   map[string][]uuid.UUID
}

// NewMemoryRecorder returns an empty in-memory Recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		records: make(map[uuid.UUID]CausalityRecord),
		byRun:   make(map[string][]uuid.UUID),
	}
}

func (m *MemoryRecorder) Record(_ context.Context, rec CausalityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.MessageID] = rec
	m.byRun[rec.RunID] = append(m.byRun[rec.RunID], rec.MessageID)
	return nil
}

func (m *MemoryRecorder) Ancestors(_ context.Context, messageID uuid.UUID) ([]CausalityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[messageID]
	if !ok {
		return nil, ErrNotFound
	}

	var chain []CausalityRecord
	for {
		chain = append(chain, rec)
		if !rec.HasTrigger {
			break
		}
		next, ok := m.records[rec.TriggeredByID]
		if !ok {
			break
		}
		rec = next
	}
	return chain, nil
}

func (m *MemoryRecorder) Run(_ context.Context, runID string) ([]CausalityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byRun[runID]
	records := make([]CausalityRecord, 0, len(ids))
	for _, id := range ids {
		records = append(records, m.records[id])
	}
	return records, nil
}
