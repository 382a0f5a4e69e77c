package model

import "strings"

// Tier is an ordered trust classification derived from an entity's
// verification fields: unverified < bronze < silver < gold.
type Tier string

const (
	TierUnverified Tier = "unverified"
	TierBronze     Tier = "bronze"
	TierSilver     Tier = "silver"
	TierGold       Tier = "gold"
)

// Tiers lists all tiers in ascending order.
var Tiers = []Tier{TierUnverified, TierBronze, TierSilver, TierGold}

// Rank returns the zero-based index of the tier in ascending order.
// Unknown values rank as unverified.
func (t Tier) Rank() int {
	switch t {
	case TierBronze:
		return 1
	case TierSilver:
		return 2
	case TierGold:
		return 3
	default:
		return 0
	}
}

// ParseTier normalizes a tier literal case-insensitively. The legacy
// literal "verified" maps to bronze.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gold":
		return TierGold, true
	case "silver":
		return TierSilver, true
	case "bronze", "verified":
		return TierBronze, true
	case "unverified", "none":
		return TierUnverified, true
	default:
		return TierUnverified, false
	}
}

// InferTier resolves an entity's tier from its verification fields:
// an explicit tier literal wins; a gold/partner/on-site flag maps to gold;
// a generic verified flag resolves to silver when reference or document
// data is present, bronze otherwise.
func (e *Entity) InferTier() Tier {
	v := e.Verification
	if t, ok := ParseTier(v.Tier); ok {
		return t
	}
	if v.Gold {
		return TierGold
	}
	if v.Verified {
		if v.References > 0 || v.Documents > 0 {
			return TierSilver
		}
		return TierBronze
	}
	return TierUnverified
}
