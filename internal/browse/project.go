package browse

import (
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

// Result is the entity-shaped record handed to the rendering layer: the
// entity itself plus the ranking rationale and a preformatted distance
// label. Pure reshaping; order equals the ranked order.
type Result struct {
	Entity    model.Entity `json:"entity"`
	Rationale string       `json:"rationale,omitempty"`
	Distance  string       `json:"distance,omitempty"`
	Tier      model.Tier   `json:"tier"`
	Score     float64      `json:"score"`
}

// Project merges each ranked entity with its rationale metadata.
func Project(scored []Scored) []Result {
	out := make([]Result, 0, len(scored))
	for _, s := range scored {
		r := Result{
			Entity:    s.Entity,
			Rationale: s.Rationale,
			Tier:      s.Tier,
			Score:     s.Score,
		}
		if s.DistanceKm != nil {
			r.Distance = geo.FormatKm(*s.DistanceKm)
		}
		out = append(out, r)
	}
	return out
}
