package browse

import (
	"math"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

const (
	// neutralSignal is the sub-score for a signal that cannot be
	// evaluated (missing coordinates, empty query, no timestamp).
	neutralSignal = 0.5

	// freshnessWindowDays is the age at which a product's freshness
	// signal decays to zero.
	freshnessWindowDays = 7.0

	maxRating = 5.0
)

// foldCaser performs Unicode case folding for query matching.
var foldCaser = cases.Fold()

// SubScores are the normalized scoring signals, each in [0,1].
type SubScores struct {
	Query     float64 `json:"query"`
	Distance  float64 `json:"distance"`
	Tier      float64 `json:"tier"`
	Freshness float64 `json:"freshness"`
	Rating    float64 `json:"rating"`
}

// Scored is an entity annotated with its computed ranking state. It is
// ephemeral: recomputed on every facet or collection change, never stored.
type Scored struct {
	Entity     model.Entity
	DistanceKm *float64
	Tier       model.Tier
	Sub        SubScores
	Score      float64
	Rationale  string
}

// Rank filters and orders a collection for the given facet state. Hard
// filters are a boolean AND over every active predicate; the composite
// score decides order under the default sort but never excludes anything.
// Ties keep original collection order.
func Rank(entities []model.Entity, f Filters, kind model.Kind, now time.Time) []Scored {
	f = f.Normalize()
	acc := accessorsFor(kind)

	query := strings.TrimSpace(foldCaser.String(f.Query))
	category := foldCaser.String(f.Category)
	location := foldCaser.String(f.Location)

	var radius *geo.RadiusCheck
	if f.Origin != nil && f.RadiusKm != nil {
		radius = geo.NewRadiusCheck(*f.Origin, *f.RadiusKm)
	}

	out := make([]Scored, 0, len(entities))
	for i := range entities {
		e := entities[i]
		s := Scored{
			Entity: e,
			Tier:   e.InferTier(),
		}

		// Box prefilter before paying for haversine on entities an
		// active radius will reject anyway.
		if radius != nil {
			if !e.HasCoordinates() || !radius.InBounds(geo.Point{Lat: *e.Lat, Lng: *e.Lng}) {
				continue
			}
		}
		s.DistanceKm = distanceTo(f.Origin, &e)

		if !passesFilters(&e, &s, f, acc, query, category, location, radius) {
			continue
		}

		haystack := foldCaser.String(acc.searchText(&e))
		s.Sub = subScores(&e, &s, acc, query, haystack, now)
		s.Score = composite(acc.weights, s.Sub)
		s.Rationale = rationale(&e, &s, acc, query, now)

		out = append(out, s)
	}

	sortScored(out, f.Sort, acc)
	return out
}

// distanceTo returns the origin→entity distance, or nil when either side
// has no usable coordinates.
func distanceTo(origin *geo.Point, e *model.Entity) *float64 {
	if origin == nil || !e.HasCoordinates() {
		return nil
	}
	d, ok := geo.DistanceKm(origin.Lat, origin.Lng, *e.Lat, *e.Lng)
	if !ok {
		return nil
	}
	return &d
}

// passesFilters verifies every active hard predicate. An entity missing
// the data a predicate needs cannot satisfy it and is excluded.
func passesFilters(e *model.Entity, s *Scored, f Filters, acc accessorSet, query, category, location string, radius *geo.RadiusCheck) bool {
	if category != "" && foldCaser.String(e.Category) != category {
		return false
	}
	if location != "" && !strings.Contains(foldCaser.String(e.Location), location) {
		return false
	}
	if !f.Tier.Matches(s.Tier) {
		return false
	}

	scalar := acc.scalar(e)
	if acc.provider {
		if f.MinRating != nil && (scalar == nil || *scalar < *f.MinRating) {
			return false
		}
	} else {
		if f.MinPrice != nil && (scalar == nil || *scalar < *f.MinPrice) {
			return false
		}
		if f.MaxPrice != nil && (scalar == nil || *scalar > *f.MaxPrice) {
			return false
		}
	}

	if radius != nil {
		if s.DistanceKm == nil || *s.DistanceKm > radius.RadiusKm {
			return false
		}
	}

	if query != "" && !strings.Contains(foldCaser.String(acc.searchText(e)), query) {
		return false
	}

	return true
}

// subScores computes the four normalized signals for one entity.
func subScores(e *model.Entity, s *Scored, acc accessorSet, query, haystack string, now time.Time) SubScores {
	sub := SubScores{}

	switch {
	case query == "":
		sub.Query = neutralSignal
	case strings.Contains(haystack, query):
		sub.Query = 1
	default:
		sub.Query = 0
	}

	if s.DistanceKm == nil {
		sub.Distance = neutralSignal
	} else {
		sub.Distance = clamp01(1 - *s.DistanceKm/acc.decayKm)
	}

	sub.Tier = float64(s.Tier.Rank()) / float64(model.TierGold.Rank())

	if acc.provider {
		if e.Rating != nil {
			sub.Rating = clamp01(*e.Rating / maxRating)
		}
	} else {
		if e.CreatedAt == nil {
			sub.Freshness = neutralSignal
		} else {
			ageDays := now.Sub(*e.CreatedAt).Hours() / 24
			sub.Freshness = clamp01(1 - ageDays/freshnessWindowDays)
		}
	}

	return sub
}

func composite(w weights, sub SubScores) float64 {
	return w.freshness*sub.Freshness +
		w.distance*sub.Distance +
		w.tier*sub.Tier +
		w.query*sub.Query +
		w.rating*sub.Rating
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortScored orders the filtered set in place. All sorts are stable so
// ties keep collection order. Unknown distances sort last under nearest.
func sortScored(scored []Scored, mode SortMode, acc accessorSet) {
	less := func(i, j int) bool { return scored[i].Score > scored[j].Score }

	switch mode {
	case SortNearest:
		less = func(i, j int) bool {
			return distOrInf(scored[i]) < distOrInf(scored[j])
		}
	case SortCheapest:
		less = func(i, j int) bool {
			return scalarOrInf(scored[i], acc, 1) < scalarOrInf(scored[j], acc, 1)
		}
	case SortPriceDesc:
		less = func(i, j int) bool {
			return scalarOrInf(scored[i], acc, -1) > scalarOrInf(scored[j], acc, -1)
		}
	case SortFreshest:
		less = func(i, j int) bool {
			return scored[i].Sub.Freshness > scored[j].Sub.Freshness
		}
	case SortRating:
		less = func(i, j int) bool {
			return ratingOf(scored[i]) > ratingOf(scored[j])
		}
	case SortTier:
		less = func(i, j int) bool {
			return scored[i].Tier.Rank() > scored[j].Tier.Rank()
		}
	}

	sort.SliceStable(scored, less)
}

// distOrInf treats an unknown distance as +infinity so it sorts last.
func distOrInf(s Scored) float64 {
	if s.DistanceKm == nil {
		return math.Inf(1)
	}
	return *s.DistanceKm
}

// scalarOrInf sorts entities without a price/rating to the end regardless
// of direction.
func scalarOrInf(s Scored, acc accessorSet, dir float64) float64 {
	v := acc.scalar(&s.Entity)
	if v == nil {
		return dir * math.Inf(1)
	}
	return *v
}

func ratingOf(s Scored) float64 {
	if s.Entity.Rating == nil {
		return 0
	}
	return *s.Entity.Rating
}
