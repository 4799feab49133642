package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Journal is an append-only SQLite record of everything the executor did:
// placements, cancels, fills, hedges and flatten events. It is diagnostic
// only — state is always rebuilt from venue queries, never from the journal.
type Journal struct {
	db *sql.DB
}

// Entry kinds.
const (
	KindPlace   = "PLACE"
	KindCancel  = "CANCEL"
	KindFill    = "FILL"
	KindHedge   = "HEDGE"
	KindFlatten = "FLATTEN"
)

// Entry is one journal row.
type Entry struct {
	ID      int64
	TsUnixM int64
	Kind    string
	OrderID string
	Side    string
	Price   string
	Qty     string
}

// NewJournal opens (or creates) the journal database with WAL mode enabled.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-2000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS journal (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			kind TEXT NOT NULL,
			order_id TEXT NOT NULL DEFAULT '',
			side TEXT NOT NULL DEFAULT '',
			price TEXT NOT NULL DEFAULT '',
			qty TEXT NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create journal table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record appends one entry. Callers treat failures as non-fatal.
func (j *Journal) Record(ctx context.Context, kind, orderID, side, price, qty string) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT INTO journal (ts, kind, order_id, side, price, qty) VALUES (?, ?, ?, ?, ?, ?)",
		time.Now().UnixMicro(), kind, orderID, side, price, qty,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journal entry: %w", err)
	}
	return nil
}

// Entries loads rows in insertion order, for inspection and tests.
func (j *Journal) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx,
		"SELECT id, ts, kind, order_id, side, price, qty FROM journal ORDER BY id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TsUnixM, &e.Kind, &e.OrderID, &e.Side, &e.Price, &e.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}
