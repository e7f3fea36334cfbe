package sync

import (
	"context"

	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/store"
)

// mockStore is a minimal in-memory store for sync tests. Only the read side
// is used by the exporter.
type mockStore struct {
	prizes  []*model.Prize
	listErr error
}

func newMockStore(prizes ...*model.Prize) *mockStore {
	return &mockStore{prizes: prizes}
}

func (m *mockStore) ListPrizes(_ context.Context) ([]*model.Prize, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.prizes, nil
}

func (m *mockStore) GetPrize(_ context.Context, year, category string) (*model.Prize, error) {
	for _, p := range m.prizes {
		if p.Matches(year, category) {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	return len(m.prizes), nil
}

func (m *mockStore) CreatePrize(_ context.Context, p *model.Prize) (*model.Prize, error) {
	m.prizes = append(m.prizes, p)
	return p, nil
}

func (m *mockStore) UpdatePrize(_ context.Context, _, _ string, _ *model.PrizeUpdate) (*model.Prize, error) {
	return nil, store.ErrNotFound
}

func (m *mockStore) DeletePrize(_ context.Context, _, _ string) error {
	return store.ErrNotFound
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)
