package provenance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the causality ledger to a single SQLite file.
// Connection setup enables WAL mode and a 5s busy timeout and limits the
// pool to one open connection; the schema is a single causality table.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (creating if absent) a SQLite-backed Recorder at
// path. Use ":memory:" for an ephemeral database.
func NewSQLiteRecorder(path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("provenance: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("provenance: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("provenance: set busy timeout: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRecorder) createTable(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS causality (
			message_id TEXT PRIMARY KEY,
			triggered_by_id TEXT,
			run_id TEXT NOT NULL,
			node_name TEXT NOT NULL,
			message_type TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL
		)
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("provenance: create causality table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_causality_run_id ON causality(run_id)"); err != nil {
		return fmt.Errorf("provenance: create run_id index: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Record(ctx context.Context, rec CausalityRecord) error {
	var triggeredBy interface{}
	if rec.HasTrigger {
		triggeredBy = rec.TriggeredByID.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO causality (message_id, triggered_by_id, run_id, node_name, message_type, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.MessageID.String(), triggeredBy, rec.RunID, rec.NodeName, rec.MessageType, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("provenance: insert causality record: %w", err)
	}
	return nil
}

func (r *SQLiteRecorder) Ancestors(ctx context.Context, messageID uuid.UUID) ([]CausalityRecord, error) {
	rec, err := r.load(ctx, messageID)
	if err != nil {
		return nil, err
	}

	var chain []CausalityRecord
	for {
		chain = append(chain, rec)
		if !rec.HasTrigger {
			break
		}
		next, err := r.load(ctx, rec.TriggeredByID)
		if err != nil {
			break
		}
		rec = next
	}
	return chain, nil
}

func (r *SQLiteRecorder) load(ctx context.Context, messageID uuid.UUID) (CausalityRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT message_id, triggered_by_id, run_id, node_name, message_type, timestamp
		 FROM causality WHERE message_id = ?`, messageID.String())
	return scanRecord(row)
}

func (r *SQLiteRecorder) Run(ctx context.Context, runID string) ([]CausalityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT message_id, triggered_by_id, run_id, node_name, message_type, timestamp
		 FROM causality WHERE run_id = ? ORDER BY timestamp ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("provenance: query run: %w", err)
	}
	defer rows.Close()

	var records []CausalityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the underlying database handle.
func (r *SQLiteRecorder) Close() error { return r.db.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (CausalityRecord, error) {
	var rec CausalityRecord
	var messageID, runID, nodeName, messageType string
	var triggeredBy sql.NullString

	if err := row.Scan(&messageID, &triggeredBy, &runID, &nodeName, &messageType, &rec.Timestamp); err != nil {
		if err == sql.ErrNoRows {
			return CausalityRecord{}, ErrNotFound
		}
		return CausalityRecord{}, fmt.Errorf("provenance: scan causality record: %w", err)
	}

	id, err := uuid.Parse(messageID)
	if err != nil {
		return CausalityRecord{}, fmt.Errorf("provenance: parse message id: %w", err)
	}
	rec.MessageID = id
	rec.RunID = runID
	rec.NodeName = nodeName
	rec.MessageType = messageType

	if triggeredBy.Valid {
		tid, err := uuid.Parse(triggeredBy.String)
		if err != nil {
			return CausalityRecord{}, fmt.Errorf("provenance: parse triggered_by id: %w", err)
		}
		rec.TriggeredByID = tid
		rec.HasTrigger = true
	}
	return rec, nil
}
