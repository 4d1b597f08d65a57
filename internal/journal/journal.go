// Package journal keeps a local record of processed webhook deliveries.
// It is observability only: the sync engine never reads it, so the remote
// board stays the single source of truth for synchronization decisions.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry is one processed delivery
type Entry struct {
	DeliveryID string    `json:"delivery_id"`
	Event      string    `json:"event"`
	Action     string    `json:"action"`
	Repo       string    `json:"repo"`
	Subject    int       `json:"subject"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Journal wraps the SQLite delivery log
type Journal struct {
	db *sql.DB
}

// Open opens or creates the journal database at path
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run journal migrations: %w", err)
	}
	return j, nil
}

func (j *Journal) migrate() error {
	_, err := j.db.Exec(migrationDeliveries)
	return err
}

// Record appends one delivery. A fresh delivery id is generated and
// returned with the stored entry.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	e.DeliveryID = uuid.NewString()
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO deliveries (delivery_id, event, action, repo, subject, outcome, error, received_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.DeliveryID, e.Event, e.Action, e.Repo, e.Subject, e.Outcome, e.Error,
		e.ReceivedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record delivery: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries, most recent first
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT delivery_id, event, action, repo, subject, outcome, error, received_at
		FROM deliveries
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var receivedAt string
		if err := rows.Scan(&e.DeliveryID, &e.Event, &e.Action, &e.Repo, &e.Subject,
			&e.Outcome, &e.Error, &receivedAt); err != nil {
			return nil, err
		}
		e.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database
func (j *Journal) Close() error {
	return j.db.Close()
}

const migrationDeliveries = `
CREATE TABLE IF NOT EXISTS deliveries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    delivery_id TEXT UNIQUE NOT NULL,
    event TEXT NOT NULL,
    action TEXT NOT NULL,
    repo TEXT NOT NULL,
    subject INTEGER NOT NULL,
    outcome TEXT NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    received_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deliveries_received ON deliveries(received_at);
`
