// Package jsonfile implements store.Store as an in-memory list of prizes
// mirrored to a single JSON document on disk.
//
// The document has one top-level key, "prizes", holding the array of prize
// objects. Every successful mutation rewrites the whole document.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alfredjeanlab/nobel/internal/idgen"
	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/store"
)

// Document is the on-disk layout.
type Document struct {
	Prizes []*model.Prize `json:"prizes"`
}

// Store implements store.Store backed by a JSON document.
//
// A single RWMutex guards the prize list. Mutations hold the write lock
// across the uniqueness check, the in-memory change and the document
// rewrite, so two concurrent creates of the same prize cannot both succeed.
// Stored prizes are never modified in place; updates swap in a new value,
// which keeps snapshots returned by ListPrizes stable.
type Store struct {
	path string

	mu     sync.RWMutex
	prizes []*model.Prize
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Open loads the document at path. A missing file yields an empty store; the
// file is created on the first mutation.
func Open(path string) (*Store, error) {
	prizes, err := ReadDocument(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return &Store{path: path, prizes: prizes}, nil
}

// Path returns the location of the backing document.
func (s *Store) Path() string { return s.path }

// ReadDocument reads and decodes the document at path. Null entries in the
// prize array are dropped.
func ReadDocument(path string) ([]*model.Prize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(data)
}

// DecodeDocument decodes a document from raw JSON.
func DecodeDocument(data []byte) ([]*model.Prize, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode prize document: %w", err)
	}
	prizes := make([]*model.Prize, 0, len(doc.Prizes))
	for _, p := range doc.Prizes {
		if p != nil {
			prizes = append(prizes, p)
		}
	}
	return prizes, nil
}

// EncodeDocument writes prizes to w in the document layout: four-space
// indentation, non-ASCII characters kept as-is.
func EncodeDocument(w io.Writer, prizes []*model.Prize) error {
	if prizes == nil {
		prizes = []*model.Prize{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(Document{Prizes: prizes})
}

// WriteDocument atomically replaces the document at path: the content is
// written to a temporary file in the same directory and renamed into place.
func WriteDocument(path string, prizes []*model.Prize) error {
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, prizes); err != nil {
		return fmt.Errorf("encode prize document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".prizes-*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// persist rewrites the document. Callers must hold the write lock.
func (s *Store) persist() error {
	if err := WriteDocument(s.path, s.prizes); err != nil {
		return &store.PersistError{Path: s.path, Err: err}
	}
	return nil
}

// Close is a no-op; the document is closed after every write.
func (s *Store) Close() error { return nil }

// ListPrizes returns a snapshot of all prizes in insertion order.
func (s *Store) ListPrizes(_ context.Context) ([]*model.Prize, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Prize, len(s.prizes))
	copy(out, s.prizes)
	return out, nil
}

// GetPrize returns the prize for (year, category) or store.ErrNotFound.
func (s *Store) GetPrize(_ context.Context, year, category string) (*model.Prize, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(year, category); i >= 0 {
		return s.prizes[i], nil
	}
	return nil, store.ErrNotFound
}

// Count returns the number of stored prizes.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.prizes), nil
}

// CreatePrize appends a new prize. It fails with store.ErrConflict when a
// prize for the same year and category already exists. Laureates without an
// id get one assigned. A *store.PersistError is returned together with the
// created prize when only the document rewrite failed.
func (s *Store) CreatePrize(ctx context.Context, prize *model.Prize) (*model.Prize, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := model.ValidatePrize(prize); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(prize.Year, prize.Category) >= 0 {
		return nil, fmt.Errorf("%w: %s %s", store.ErrConflict, prize.Year, prize.Category)
	}

	p := prize.Clone()
	if len(p.Laureates) == 0 {
		p.Laureates = nil
	}
	if err := assignLaureateIDs(p.Laureates, p.Year); err != nil {
		return nil, err
	}
	s.prizes = append(s.prizes, p)

	return p, s.persist()
}

// UpdatePrize applies a partial update to the prize for (year, category).
// When the update carries laureates they replace the existing list. Missing
// laureate ids are derived from the year the prize had before the update,
// even when the same update moves it to another year. Moving a prize onto another existing (year, category) fails
// with store.ErrConflict.
func (s *Store) UpdatePrize(ctx context.Context, year, category string, update *model.PrizeUpdate) (*model.Prize, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := model.ValidateUpdate(update); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(year, category)
	if i < 0 {
		return nil, store.ErrNotFound
	}

	prev := s.prizes[i]
	p := update.Apply(prev)
	if j := s.indexOf(p.Year, p.Category); j >= 0 && j != i {
		return nil, fmt.Errorf("%w: %s %s", store.ErrConflict, p.Year, p.Category)
	}
	if update.Laureates.IsSet() {
		if err := assignLaureateIDs(p.Laureates, prev.Year); err != nil {
			return nil, err
		}
	}
	s.prizes[i] = p

	return p, s.persist()
}

// DeletePrize removes the prize for (year, category), or fails with
// store.ErrNotFound.
func (s *Store) DeletePrize(ctx context.Context, year, category string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]*model.Prize, 0, len(s.prizes))
	for _, p := range s.prizes {
		if !p.Matches(year, category) {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(s.prizes) {
		return store.ErrNotFound
	}
	s.prizes = kept

	return s.persist()
}

func (s *Store) indexOf(year, category string) int {
	for i, p := range s.prizes {
		if p.Matches(year, category) {
			return i
		}
	}
	return -1
}

// assignLaureateIDs fills in missing laureate ids from year.
func assignLaureateIDs(laureates []model.Laureate, year string) error {
	for i := range laureates {
		l := &laureates[i]
		if l.ID != "" {
			continue
		}
		id, err := idgen.LaureateID(l.Firstname, l.Surname, year)
		if err != nil {
			return fmt.Errorf("assign laureate id: %w", err)
		}
		l.ID = id
	}
	return nil
}
