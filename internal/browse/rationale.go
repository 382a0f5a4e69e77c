package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

const rationaleSeparator = " · "

// rationale assembles the human-readable "Why: …" string from the signals
// that actually contributed. Clauses appear in a fixed order; an entity
// with nothing to say gets an empty rationale.
func rationale(e *model.Entity, s *Scored, acc accessorSet, query string, now time.Time) string {
	var clauses []string

	if s.DistanceKm != nil {
		if label := geo.FormatKm(*s.DistanceKm); label != "" {
			clauses = append(clauses, label+" away")
		}
	}

	if !acc.provider && e.CreatedAt != nil {
		clauses = append(clauses, ageClause(now.Sub(*e.CreatedAt)))
	}

	if s.Tier != model.TierUnverified {
		clauses = append(clauses, tierClause(s.Tier))
	}

	if e.Rating != nil && *e.Rating > 0 {
		clauses = append(clauses, fmt.Sprintf("rated %.1f/5", *e.Rating))
	}

	if query != "" && s.Sub.Query == 1 {
		clauses = append(clauses, matchClause(e, query))
	}

	if len(clauses) == 0 {
		return ""
	}
	return "Why: " + strings.Join(clauses, rationaleSeparator)
}

func ageClause(age time.Duration) string {
	days := int(age.Hours() / 24)
	switch {
	case days <= 0:
		return "added today"
	case days == 1:
		return "added yesterday"
	default:
		return fmt.Sprintf("added %d days ago", days)
	}
}

func tierClause(t model.Tier) string {
	switch t {
	case model.TierGold:
		return "Gold verified"
	case model.TierSilver:
		return "Silver verified"
	default:
		return "Bronze verified"
	}
}

// matchClause names the facet the query hit when it is identifiable,
// otherwise falls back to a generic clause.
func matchClause(e *model.Entity, query string) string {
	if e.Category != "" && strings.Contains(foldCaser.String(e.Category), query) {
		return "matches " + e.Category
	}
	if e.Location != "" && strings.Contains(foldCaser.String(e.Location), query) {
		return "near " + e.Location
	}
	return "matches your search"
}
