package browse

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rotisserie/eris"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

const (
	// searchDebounce is the idle window after a keystroke before a
	// remote search request is issued.
	searchDebounce = 400 * time.Millisecond

	defaultSearchLimit = 50
)

// Session wires one browse surface together: facet state, URL sync, the
// hybrid local/remote working set, and ranking. All state is guarded by a
// single mutex; every recomputation ranks an immutable snapshot.
type Session struct {
	kind   model.Kind
	source Source

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	filters   Filters
	baseline  []model.Entity
	working   []model.Entity
	loading   bool
	loaded    bool
	searching bool
	gen       uint64
	closed    bool

	searchLimit  int
	now          func() time.Time
	urlWindow    time.Duration
	searchWindow time.Duration
	urlWrite     func(query string)
	debSearch    func(func())
	syncer       *Syncer
	onUpdate     func([]Result)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithURLWriter installs the callback that publishes the canonical query
// string after the URL-sync debounce (the "replace URL" side effect).
func WithURLWriter(write func(query string)) SessionOption {
	return func(s *Session) { s.urlWrite = write }
}

// WithOnUpdate installs the callback invoked with fresh ranked results
// after every recomputation.
func WithOnUpdate(fn func([]Result)) SessionOption {
	return func(s *Session) { s.onUpdate = fn }
}

// WithSearchLimit caps remote search result sets.
func WithSearchLimit(n int) SessionOption {
	return func(s *Session) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithDebounceWindows overrides both debounce windows. Used by tests.
func WithDebounceWindows(urlWindow, searchWindow time.Duration) SessionOption {
	return func(s *Session) {
		s.urlWindow = urlWindow
		s.searchWindow = searchWindow
	}
}

// WithClock overrides the freshness clock. Used by tests.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession creates a session for one entity kind. Call Load before
// reading results and Close when navigating away.
func NewSession(kind model.Kind, source Source, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		kind:         kind,
		source:       source,
		ctx:          ctx,
		cancel:       cancel,
		filters:      DefaultFilters(),
		searchLimit:  defaultSearchLimit,
		now:          time.Now,
		urlWindow:    urlSyncDebounce,
		searchWindow: searchDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debSearch = debounce.New(s.searchWindow)
	s.syncer = NewSyncer(s.urlWrite, WithSyncWindow(s.urlWindow))
	return s
}

// Load fetches the full collection once. The loading flag is distinct
// from the per-search searching flag.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	entities, err := s.source.Collection(ctx, s.kind)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return eris.Wrapf(err, "browse: load %s collection", s.kind)
	}
	s.loaded = true
	s.baseline = entities
	if s.filters.Query == "" {
		s.working = entities
	} else {
		s.onQueryChange()
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Update applies a local facet change. The URL write is debounced and the
// query facet switches the working-set mode.
func (s *Session) Update(mutate func(*Filters)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := s.filters
	next := s.filters
	mutate(&next)
	next = next.Normalize()
	s.filters = next

	if s.syncer != nil {
		s.syncer.Schedule(next)
	}
	if next.Query != before.Query {
		s.onQueryChange()
	}
	s.mu.Unlock()

	s.notify()
}

// Navigate applies an externally supplied query string (initial mount,
// back/forward, shared link). A no-op when the decoded state matches the
// current state, and it never echoes back into a URL write.
func (s *Session) Navigate(rawQuery string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	decoded := DecodeQuery(rawQuery)
	if s.syncer != nil {
		s.syncer.MarkExternal(rawQuery)
	}
	if EncodeQuery(decoded) == EncodeQuery(s.filters) {
		s.mu.Unlock()
		return
	}
	queryChanged := decoded.Query != s.filters.Query
	s.filters = decoded
	if queryChanged && s.loaded {
		s.onQueryChange()
	}
	s.mu.Unlock()

	s.notify()
}

// Results ranks the current working set under the current facet state.
func (s *Session) Results() []Result {
	s.mu.Lock()
	working := s.working
	filters := s.filters
	s.mu.Unlock()

	return Project(Rank(working, filters, s.kind, s.now()))
}

// Filters returns a copy of the current facet state.
func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Loading reports whether the initial collection fetch is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Searching reports whether a remote search is in flight.
func (s *Session) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

// Close stops debounced callbacks and in-flight work from mutating state.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if s.syncer != nil {
		s.syncer.Stop()
	}
	s.cancel()
}

func (s *Session) notify() {
	s.mu.Lock()
	fn := s.onUpdate
	closed := s.closed
	s.mu.Unlock()
	if fn == nil || closed {
		return
	}
	fn(s.Results())
}
