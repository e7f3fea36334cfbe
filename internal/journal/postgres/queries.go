package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/alfredjeanlab/nobel/internal/model"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	payload := []byte(e.Payload)
	if len(payload) == 0 {
		payload = []byte(`{}`)
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO prize_events (id, topic, year, category, category_key, actor, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		e.ID, e.Topic, e.Year, e.Category, categoryKey(e.Category), nullString(e.Actor), payload,
	).Scan(&e.CreatedAt)
}

func queryListEvents(ctx context.Context, db executor, year, category string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, year, category, actor, payload, created_at
		FROM prize_events
		WHERE year = $1 AND category_key = $2
		ORDER BY created_at ASC`,
		year, categoryKey(category),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var (
		e       model.Event
		actor   sql.NullString
		payload []byte
	)
	if err := row.Scan(&e.ID, &e.Topic, &e.Year, &e.Category, &actor, &payload, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Actor = actor.String
	e.Payload = json.RawMessage(payload)
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
