package browse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// Source supplies the two data paths for a browse surface: the full
// collection fetched once on load, and server-side free-text search.
type Source interface {
	Collection(ctx context.Context, kind model.Kind) ([]model.Entity, error)
	Search(ctx context.Context, kind model.Kind, query string, limit int) ([]model.Entity, error)
}

// Browse is the stateless one-shot pipeline: pick the working set per the
// hybrid rule, rank, project. A failed remote search degrades to an empty
// result set instead of stale or wrong results; only the initial
// collection fetch can surface an error.
func Browse(ctx context.Context, source Source, kind model.Kind, f Filters, searchLimit int) ([]Result, error) {
	f = f.Normalize()

	var working []model.Entity
	if f.Query != "" {
		entities, err := source.Search(ctx, kind, f.Query, searchLimit)
		if err != nil {
			zap.L().Warn("remote search failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			entities = nil
		}
		working = entities
	} else {
		entities, err := source.Collection(ctx, kind)
		if err != nil {
			return nil, err
		}
		working = entities
	}

	return Project(Rank(working, f, kind, time.Now())), nil
}

// onQueryChange switches the working set between the two source modes.
// Caller holds the session lock.
func (s *Session) onQueryChange() {
	if s.filters.Query == "" {
		// Back to the local collection. Bumping the generation drops
		// any in-flight search response that arrives afterwards.
		s.gen++
		s.searching = false
		s.working = s.baseline
		return
	}
	s.debSearch(s.runSearch)
}

// runSearch fires after the search debounce window. Only the latest
// generation's response is ever applied; superseded requests are dropped
// regardless of response ordering.
func (s *Session) runSearch() {
	s.mu.Lock()
	if s.closed || s.filters.Query == "" {
		s.mu.Unlock()
		return
	}
	s.gen++
	gen := s.gen
	query := s.filters.Query
	s.searching = true
	s.mu.Unlock()

	searchID := uuid.NewString()
	log := zap.L().With(
		zap.String("search_id", searchID),
		zap.String("kind", string(s.kind)),
		zap.String("query", query),
	)

	entities, err := s.source.Search(s.ctx, s.kind, query, s.searchLimit)

	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		log.Debug("remote search superseded")
		return
	}
	s.searching = false
	if err != nil {
		// Explicit "no results" beats silently-wrong stale results.
		log.Warn("remote search failed", zap.Error(err))
		s.working = nil
	} else {
		log.Debug("remote search applied", zap.Int("results", len(entities)))
		s.working = entities
	}
	s.mu.Unlock()

	s.notify()
}
