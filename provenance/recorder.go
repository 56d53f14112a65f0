// Package provenance records the causality ledger a running flow produces:
// which message triggered which, at which node, in which run. The engine
// itself never builds this graph — triggered_by_id is a semantic link the
// router does not chase; provenance is an opt-in clearflow.CallbackHandler
// that an application attaches via FlowBuilder.Observe when it needs to
// answer "what led to this message".
package provenance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested message id has no recorded
// ancestry.
var ErrNotFound = errors.New("provenance: not found")

// CausalityRecord captures one message's place in the causality DAG.
type CausalityRecord struct {
	MessageID     uuid.UUID
	TriggeredByID uuid.UUID
	HasTrigger    bool
	RunID         string
	NodeName      string
	MessageType   string
	Timestamp     time.Time
}

// Recorder persists CausalityRecords and answers ancestry queries.
// Implementations: MemoryRecorder, SQLiteRecorder, MySQLRecorder.
type Recorder interface {
	Record(ctx context.Context, rec CausalityRecord) error

	// Ancestors returns the chain of records from messageID back to the
	// run's origin, nearest first. ErrNotFound if messageID was never
	// recorded.
	Ancestors(ctx context.Context, messageID uuid.UUID) ([]CausalityRecord, error)

	// Run returns every record belonging to runID. MemoryRecorder returns
	// them in recorded order; SQLiteRecorder and MySQLRecorder return them
	// in ascending Timestamp order.
	Run(ctx context.Context, runID string) ([]CausalityRecord, error)
}
