package browse

import (
	"math"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
)

// URL parameter keys, one per facet. A field at its default value is
// omitted so shared URLs stay minimal and diff-stable.
const (
	paramQuery     = "q"
	paramCategory  = "category"
	paramLocation  = "loc"
	paramTier      = "tier"
	paramMinPrice  = "min"
	paramMaxPrice  = "max"
	paramMinRating = "min_rating"
	paramSort      = "sort"
	paramNear      = "near"
	paramNearLat   = "near_lat"
	paramNearLng   = "near_lng"
	paramRadius    = "rad"
)

// urlSyncDebounce is the idle window before a state change is written back
// to the URL.
const urlSyncDebounce = 250 * time.Millisecond

// EncodeQuery renders the non-default facets as a canonical query string.
// Keys are sorted and floats use the shortest exact representation, so
// encoding is deterministic and decode→encode is idempotent.
func EncodeQuery(f Filters) string {
	f = f.Normalize()
	v := url.Values{}

	setStr := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	setFloat := func(key string, p *float64) {
		if p != nil {
			v.Set(key, formatFloat(*p))
		}
	}

	setStr(paramQuery, f.Query)
	setStr(paramCategory, f.Category)
	setStr(paramLocation, f.Location)
	if f.Tier != TierAll && f.Tier != "" {
		v.Set(paramTier, string(f.Tier))
	}
	setFloat(paramMinPrice, f.MinPrice)
	setFloat(paramMaxPrice, f.MaxPrice)
	setFloat(paramMinRating, f.MinRating)
	if f.Sort != SortBest && f.Sort != "" {
		v.Set(paramSort, string(f.Sort))
	}
	if f.Origin != nil {
		setStr(paramNear, f.OriginLabel)
		v.Set(paramNearLat, formatFloat(f.Origin.Lat))
		v.Set(paramNearLng, formatFloat(f.Origin.Lng))
	}
	setFloat(paramRadius, f.RadiusKm)

	return v.Encode()
}

// DecodeQuery parses a raw query string into Filters. Unrecognized keys and
// malformed values fall back to defaults; decoding never fails.
func DecodeQuery(rawQuery string) Filters {
	v, err := url.ParseQuery(rawQuery)
	if err != nil {
		return DefaultFilters()
	}

	f := DefaultFilters()
	f.Query = v.Get(paramQuery)
	f.Category = v.Get(paramCategory)
	f.Location = v.Get(paramLocation)
	if t := TierFilter(v.Get(paramTier)); t.IsValid() {
		f.Tier = t
	}
	f.MinPrice = parseFloat(v.Get(paramMinPrice))
	f.MaxPrice = parseFloat(v.Get(paramMaxPrice))
	f.MinRating = parseFloat(v.Get(paramMinRating))
	if m := SortMode(v.Get(paramSort)); m.IsValid() {
		f.Sort = m
	}

	lat := parseFloat(v.Get(paramNearLat))
	lng := parseFloat(v.Get(paramNearLng))
	if lat != nil && lng != nil {
		f.Origin = &geo.Point{Lat: *lat, Lng: *lng}
		f.OriginLabel = v.Get(paramNear)
	}
	if r := v.Get(paramRadius); r != "" && r != "all" {
		f.RadiusKm = parseFloat(r)
	}

	return f.Normalize()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// parseFloat returns nil for anything that is not a finite number.
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Syncer owns the state→URL direction of query synchronization: writes are
// debounced and skipped when the encoded state already matches the last
// known URL, so an externally applied navigation never echoes back as a
// fresh write.
type Syncer struct {
	mu      sync.Mutex
	write   func(query string)
	deb     func(func())
	last    string
	stopped bool
}

// SyncerOption configures a Syncer.
type SyncerOption func(*Syncer)

// WithSyncWindow overrides the debounce window. Used by tests.
func WithSyncWindow(d time.Duration) SyncerOption {
	return func(s *Syncer) {
		s.deb = debounce.New(d)
	}
}

// NewSyncer creates a Syncer that publishes query strings through write.
func NewSyncer(write func(query string), opts ...SyncerOption) *Syncer {
	s := &Syncer{
		write: write,
		deb:   debounce.New(urlSyncDebounce),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule queues a debounced write of the given facet state. A newer call
// supersedes a pending one (trailing debounce).
func (s *Syncer) Schedule(f Filters) {
	encoded := EncodeQuery(f)
	s.deb(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.stopped || encoded == s.last {
			return
		}
		s.last = encoded
		if s.write != nil {
			s.write(encoded)
		}
	})
}

// MarkExternal records a query string that arrived from outside (initial
// mount, back/forward navigation) so the next Schedule of the same state
// is a no-op.
func (s *Syncer) MarkExternal(rawQuery string) {
	canonical := EncodeQuery(DecodeQuery(rawQuery))
	s.mu.Lock()
	s.last = canonical
	s.mu.Unlock()
}

// Last returns the most recent query string written or marked external.
func (s *Syncer) Last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stop prevents any pending debounced write from firing.
func (s *Syncer) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
