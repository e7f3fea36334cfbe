package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/nobel/internal/model"
)

var (
	// ErrNotFound is returned when no prize matches (year, category).
	ErrNotFound = errors.New("prize not found")
	// ErrConflict is returned when a prize for (year, category) already exists.
	ErrConflict = errors.New("prize already exists")
)

// PersistError reports that a mutation was applied in memory but the backing
// document could not be rewritten. Mutations return it alongside their
// normal result; callers treat it as a warning, not a failure.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistWarning reports whether err is (or wraps) a *PersistError.
func IsPersistWarning(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// Store defines the persistence interface for prizes.
//
// Prizes returned by a Store are shared, read-only values: callers must
// Clone before modifying them.
type Store interface {
	// Reads
	ListPrizes(ctx context.Context) ([]*model.Prize, error)
	GetPrize(ctx context.Context, year, category string) (*model.Prize, error)
	Count(ctx context.Context) (int, error)

	// Mutations. Each one rewrites the backing document before returning.
	CreatePrize(ctx context.Context, prize *model.Prize) (*model.Prize, error)
	UpdatePrize(ctx context.Context, year, category string, update *model.PrizeUpdate) (*model.Prize, error)
	DeletePrize(ctx context.Context, year, category string) error

	// Lifecycle
	Close() error
}
