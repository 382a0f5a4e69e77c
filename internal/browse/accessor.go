package browse

import (
	"strings"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// weights is the convex combination used for the composite score. Each set
// sums to 1; the constants are deliberately literal (no configuration
// surface).
type weights struct {
	freshness float64
	distance  float64
	tier      float64
	query     float64
	rating    float64
}

// accessorSet bundles the per-kind field extraction strategy so the
// scoring and filtering routine stays kind-agnostic instead of branching
// on entity shape throughout.
type accessorSet struct {
	provider   bool
	decayKm    float64
	weights    weights
	searchText func(*model.Entity) string
	scalar     func(*model.Entity) *float64
}

var productAccessors = accessorSet{
	decayKm: 60,
	weights: weights{freshness: 0.35, distance: 0.30, tier: 0.20, query: 0.15},
	searchText: func(e *model.Entity) string {
		return strings.Join([]string{e.Name, e.Category, e.Location}, " ")
	},
	scalar: func(e *model.Entity) *float64 { return e.Price },
}

var providerAccessors = accessorSet{
	provider: true,
	decayKm:  50,
	weights:  weights{query: 0.40, distance: 0.25, tier: 0.20, rating: 0.15},
	searchText: func(e *model.Entity) string {
		return strings.Join([]string{e.Name, e.Category, e.Location}, " ")
	},
	scalar: func(e *model.Entity) *float64 { return e.Rating },
}

// accessorsFor returns the extraction strategy for a browse surface.
// Services share the product surface (priced, freshness-weighted).
func accessorsFor(kind model.Kind) accessorSet {
	if kind.IsProvider() {
		return providerAccessors
	}
	return productAccessors
}
