package sqlite

import (
	"context"
	"fmt"

	"github.com/jihun-01/scratcha-dashboard/domain/usage"
	"github.com/jihun-01/scratcha-dashboard/ports"
)

// EventStore persists the demo event pool.
type EventStore struct {
	db *DB
}

// NewEventStore creates a SQLite-backed event store.
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db}
}

// Replace swaps the stored pool inside one transaction.
func (s *EventStore) Replace(ctx context.Context, events []usage.Event) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM usage_events"); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_events (id, app_id, app_name, key_id, api_key, occurred_at, result, response_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		_, err := stmt.ExecContext(ctx, e.ID, e.AppID, e.AppName, e.KeyID, e.APIKey, e.OccurredAt, string(e.Result), e.ResponseTimeMs)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// List returns the full pool, newest first. RFC 3339 timestamps sort
// lexicographically, so the index order is the time order.
func (s *EventStore) List(ctx context.Context) ([]usage.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, app_id, app_name, key_id, api_key, occurred_at, result, response_time_ms
		FROM usage_events
		ORDER BY occurred_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []usage.Event
	for rows.Next() {
		var e usage.Event
		var result string
		if err := rows.Scan(&e.ID, &e.AppID, &e.AppName, &e.KeyID, &e.APIKey, &e.OccurredAt, &result, &e.ResponseTimeMs); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Result = usage.Result(result)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// Count returns the pool size.
func (s *EventStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_events").Scan(&n); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return n, nil
}

var _ ports.EventStore = (*EventStore)(nil)
