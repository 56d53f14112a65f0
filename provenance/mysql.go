package provenance

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

// MySQLRecorder persists the causality ledger to MySQL in a single
// causality table. The connection uses the driver's default pool and
// session settings; none are configured here.
type MySQLRecorder struct {
	db *sql.DB
}

// NewMySQLRecorder opens a connection to dsn (a go-sql-driver/mysql data
// source name) and ensures the causality table exists.
func NewMySQLRecorder(dsn string) (*MySQLRecorder, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("provenance: open mysql: %w", err)
	}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("provenance: ping mysql: %w", err)
	}

	r := &MySQLRecorder{db: db}
	if err := r.createTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *MySQLRecorder) createTable(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS causality (
			message_id CHAR(36) PRIMARY KEY,
			triggered_by_id CHAR(36) NULL,
			run_id VARCHAR(255) NOT NULL,
			node_name VARCHAR(255) NOT NULL,
			message_type VARCHAR(255) NOT NULL,
			timestamp TIMESTAMP(6) NOT NULL,
			INDEX idx_causality_run_id (run_id)
		) ENGINE=InnoDB
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("provenance: create causality table: %w", err)
	}
	return nil
}

func (r *MySQLRecorder) Record(ctx context.Context, rec CausalityRecord) error {
	var triggeredBy interface{}
	if rec.HasTrigger {
		triggeredBy = rec.TriggeredByID.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO causality (message_id, triggered_by_id, run_id, node_name, message_type, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE triggered_by_id = VALUES(triggered_by_id)`,
		rec.MessageID.String(), triggeredBy, rec.RunID, rec.NodeName, rec.MessageType, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("provenance: insert causality record: %w", err)
	}
	return nil
}

func (r *MySQLRecorder) Ancestors(ctx context.Context, messageID uuid.UUID) ([]CausalityRecord, error) {
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

func (r *MySQLRecorder) load(ctx context.Context, messageID uuid.UUID) (CausalityRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT message_id, triggered_by_id, run_id, node_name, message_type, timestamp
		 FROM causality WHERE message_id = ?`, messageID.String())
	return scanRecord(row)
}

func (r *MySQLRecorder) Run(ctx context.Context, runID string) ([]CausalityRecord, error) {
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
func (r *MySQLRecorder) Close() error { return r.db.Close() }
