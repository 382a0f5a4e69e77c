package browse

import (
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// SortMode selects how the filtered result set is ordered.
type SortMode string

const (
	SortBest      SortMode = "best"
	SortNearest   SortMode = "nearest"
	SortCheapest  SortMode = "cheapest"
	SortPriceDesc SortMode = "price_desc"
	SortFreshest  SortMode = "freshest"
	SortRating    SortMode = "rating"
	SortTier      SortMode = "tier"
)

// IsValid checks if the mode is one of the supported values.
func (m SortMode) IsValid() bool {
	switch m {
	case SortBest, SortNearest, SortCheapest, SortPriceDesc, SortFreshest, SortRating, SortTier:
		return true
	}
	return false
}

// NeedsOrigin reports whether the mode requires a resolved geo-origin.
func (m SortMode) NeedsOrigin() bool { return m == SortNearest }

// TierFilter is the verification facet selector. "verified" is a threshold
// (bronze or better); the named tiers are exact matches.
type TierFilter string

const (
	TierAll         TierFilter = "all"
	TierAnyVerified TierFilter = "verified"
)

// IsValid checks if the selector is a recognized value.
func (f TierFilter) IsValid() bool {
	switch f {
	case TierAll, TierAnyVerified,
		TierFilter(model.TierGold), TierFilter(model.TierSilver),
		TierFilter(model.TierBronze), TierFilter(model.TierUnverified):
		return true
	}
	return false
}

// Matches reports whether an inferred tier passes the selector.
func (f TierFilter) Matches(t model.Tier) bool {
	switch f {
	case TierAll, "":
		return true
	case TierAnyVerified:
		return t.Rank() >= model.TierBronze.Rank()
	}
	exact, ok := model.ParseTier(string(f))
	if !ok {
		return true
	}
	return t == exact
}

// Filters is the full user-controlled facet state for one browse surface.
type Filters struct {
	Query     string     `yaml:"query"`
	Category  string     `yaml:"category"`
	Location  string     `yaml:"location"`
	Tier      TierFilter `yaml:"tier"`
	MinPrice  *float64   `yaml:"min_price"`
	MaxPrice  *float64   `yaml:"max_price"`
	MinRating *float64   `yaml:"min_rating"`
	Sort      SortMode   `yaml:"sort"`

	// Origin is the resolved geo reference for distance facets; Label is
	// its display string. A non-nil Origin is what enables the radius
	// facet and nearest sort.
	Origin      *geo.Point `yaml:"origin"`
	OriginLabel string     `yaml:"origin_label"`

	// RadiusKm is nil for "all".
	RadiusKm *float64 `yaml:"radius_km"`
}

// DefaultFilters returns the all-default facet state.
func DefaultFilters() Filters {
	return Filters{Tier: TierAll, Sort: SortBest}
}

// HasOrigin reports whether a geo-origin is resolved.
func (f *Filters) HasOrigin() bool { return f.Origin != nil }

// Normalize enforces the radius gate and falls back from unrecognized
// selector values. Without a resolved origin the radius facet resets to
// all and distance-dependent sorts fall back to best.
func (f Filters) Normalize() Filters {
	if !f.Tier.IsValid() {
		f.Tier = TierAll
	}
	if !f.Sort.IsValid() {
		f.Sort = SortBest
	}
	if f.RadiusKm != nil && *f.RadiusKm <= 0 {
		f.RadiusKm = nil
	}
	if f.Origin == nil {
		f.RadiusKm = nil
		if f.Sort.NeedsOrigin() {
			f.Sort = SortBest
		}
	}
	return f
}
