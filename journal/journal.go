// Package journal persists the auction's notification log: an append-only
// sequence of bid-placed, finalized, and withdrawn events backed by SQLite,
// with CBOR-encoded payloads.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/cloudx-io/openlot/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  kind       TEXT NOT NULL,
  payload    BLOB NOT NULL,
  created_at INTEGER NOT NULL
);`

// Journal is an append-only event log in a SQLite file.
type Journal struct {
	sqlDB *sql.DB
}

// eventRecord is the CBOR payload stored per event. Amounts travel as decimal
// strings so precision survives the round trip.
type eventRecord struct {
	Kind   string `cbor:"kind"`
	Bidder string `cbor:"bidder,omitempty"`
	Amount string `cbor:"amount"`
	Total  string `cbor:"total"`
	At     int64  `cbor:"at"`
}

// Open opens (creating if needed) a journal at path.
func Open(path string) (*Journal, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create events table: %w", err)
	}
	return &Journal{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (j *Journal) Close() error {
	if j == nil || j.sqlDB == nil {
		return nil
	}
	return j.sqlDB.Close()
}

// Append stores one event at the end of the log.
func (j *Journal) Append(ctx context.Context, e core.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := cbor.Marshal(eventRecord{
		Kind:   string(e.Kind),
		Bidder: string(e.Bidder),
		Amount: e.Amount.String(),
		Total:  e.Total.String(),
		At:     e.At.UTC().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	_, err = j.sqlDB.ExecContext(
		ctx,
		`INSERT INTO events (kind, payload, created_at) VALUES (?, ?, ?)`,
		string(e.Kind),
		payload,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// Events returns every logged event in insertion order.
func (j *Journal) Events(ctx context.Context) ([]core.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := j.sqlDB.QueryContext(ctx, `SELECT payload FROM events ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		event, err := decodeEvent(payload)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func decodeEvent(payload []byte) (core.Event, error) {
	var rec eventRecord
	if err := cbor.Unmarshal(payload, &rec); err != nil {
		return core.Event{}, fmt.Errorf("decode event: %w", err)
	}

	amount, err := decimal.NewFromString(rec.Amount)
	if err != nil {
		return core.Event{}, fmt.Errorf("decode event amount: %w", err)
	}
	total, err := decimal.NewFromString(rec.Total)
	if err != nil {
		return core.Event{}, fmt.Errorf("decode event total: %w", err)
	}

	return core.Event{
		Kind:   core.EventKind(rec.Kind),
		Bidder: core.Identity(rec.Bidder),
		Amount: amount,
		Total:  total,
		At:     time.UnixMilli(rec.At).UTC(),
	}, nil
}
