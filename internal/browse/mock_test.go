package browse

import (
	"context"
	"sync"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// mockSource is an in-memory Source with per-query canned search results.
// A gate channel registered for a query blocks that search call until the
// test releases it, which is how response reordering is simulated.
type mockSource struct {
	mu sync.Mutex

	collection    []model.Entity
	collectionErr error

	searchResults map[string][]model.Entity
	searchErr     error
	gates         map[string]chan struct{}

	collectionCalls int
	searchCalls     []string
}

func newMockSource(collection ...model.Entity) *mockSource {
	return &mockSource{
		collection:    collection,
		searchResults: map[string][]model.Entity{},
		gates:         map[string]chan struct{}{},
	}
}

func (m *mockSource) Collection(_ context.Context, _ model.Kind) ([]model.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collectionCalls++
	if m.collectionErr != nil {
		return nil, m.collectionErr
	}
	return m.collection, nil
}

func (m *mockSource) Search(_ context.Context, _ model.Kind, query string, _ int) ([]model.Entity, error) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, query)
	gate := m.gates[query]
	results := m.searchResults[query]
	err := m.searchErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (m *mockSource) gate(query string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[query] = ch
	return ch
}

func (m *mockSource) searched() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.searchCalls...)
}
