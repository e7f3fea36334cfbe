// Package journal records the history of prize mutations.
package journal

import (
	"context"

	"github.com/alfredjeanlab/nobel/internal/model"
)

// Journal persists mutation events. Recording is best-effort from the
// server's point of view: a failed Record never fails the mutation.
type Journal interface {
	// Record stores e, filling in ID and CreatedAt when they are empty.
	Record(ctx context.Context, e *model.Event) error
	// List returns the events for (year, category) in chronological order.
	// Category matches case-insensitively.
	List(ctx context.Context, year, category string) ([]*model.Event, error)
	Close() error
}

// NoopJournal is a Journal that keeps nothing (used when no database is configured).
type NoopJournal struct{}

func (NoopJournal) Record(context.Context, *model.Event) error { return nil }

func (NoopJournal) List(context.Context, string, string) ([]*model.Event, error) { return nil, nil }

func (NoopJournal) Close() error { return nil }
