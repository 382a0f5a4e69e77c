package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which browse surface an entity belongs to.
type Kind string

const (
	KindProducts Kind = "products"
	KindServices Kind = "services"
	KindArtisans Kind = "artisans"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == KindProducts || k == KindServices || k == KindArtisans
}

// IsProvider reports whether the kind is scored on the provider surface
// (rating sub-signal instead of freshness).
func (k Kind) IsProvider() bool { return k == KindArtisans }

// Entity is a single marketplace record: a product, a service listing, or an
// artisan profile. The three kinds arrive from different endpoints with
// inconsistent field aliases (title vs name, farm_location vs location,
// latitude vs lat); decoding unifies them so the engine sees one shape.
// Entities are read-only to the engine.
type Entity struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	Location  string     `json:"location"`
	Price     *float64   `json:"price,omitempty"`
	Rating    *float64   `json:"rating,omitempty"`
	Lat       *float64   `json:"lat,omitempty"`
	Lng       *float64   `json:"lng,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`

	Verification Verification `json:"verification"`
}

// Verification carries the heterogeneous trust fields an entity may expose.
// Tier inference over these lives in tier.go.
type Verification struct {
	Tier       string `json:"tier,omitempty"`
	Gold       bool   `json:"gold,omitempty"`
	Verified   bool   `json:"verified,omitempty"`
	References int    `json:"references,omitempty"`
	Documents  int    `json:"documents,omitempty"`
}

// HasCoordinates reports whether both lat and lng are present.
func (e *Entity) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

// UnmarshalJSON decodes an entity from any of the three API shapes.
// Every field degrades to its zero value on type mismatch; a malformed
// record never fails the decode of the surrounding collection.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.ID = looseString(raw["id"])
	e.Name = firstString(raw, "name", "title")
	e.Category = looseString(raw["category"])
	e.Location = firstString(raw, "location", "farm_location")
	e.Price = looseFloat(raw["price"])
	e.Rating = looseFloat(raw["rating"])
	e.Lat = firstFloat(raw, "lat", "latitude")
	e.Lng = firstFloat(raw, "lng", "longitude")
	e.CreatedAt = looseTime(raw["created_at"])

	e.Verification = Verification{
		Tier:       firstString(raw, "verification_tier", "verification_level", "tier"),
		Gold:       looseBool(raw["gold_verified"]) || looseBool(raw["verified_partner"]) || looseBool(raw["onsite_verified"]),
		Verified:   looseBool(raw["verified"]),
		References: looseLen(raw["references"]),
		Documents:  looseLen(raw["documents"]),
	}

	// Some records nest their trust fields instead of flattening them.
	if rawVer, ok := raw["verification"]; ok {
		var nested Verification
		if json.Unmarshal(rawVer, &nested) == nil {
			if nested.Tier != "" {
				e.Verification.Tier = nested.Tier
			}
			e.Verification.Gold = e.Verification.Gold || nested.Gold
			e.Verification.Verified = e.Verification.Verified || nested.Verified
			if nested.References > 0 {
				e.Verification.References = nested.References
			}
			if nested.Documents > 0 {
				e.Verification.Documents = nested.Documents
			}
		}
	}

	return nil
}

func firstString(raw map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		if s := looseString(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(raw map[string]json.RawMessage, keys ...string) *float64 {
	for _, k := range keys {
		if f := looseFloat(raw[k]); f != nil {
			return f
		}
	}
	return nil
}

// looseString accepts a JSON string or number and renders it as a string.
func looseString(b json.RawMessage) string {
	if len(b) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return fmt.Sprintf("%v", n)
	}
	return ""
}

// looseFloat accepts a JSON number or a numeric string.
func looseFloat(b json.RawMessage) *float64 {
	if len(b) == 0 {
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		return &n
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return &f
		}
	}
	return nil
}

func looseBool(b json.RawMessage) bool {
	if len(b) == 0 {
		return false
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		return v
	}
	return false
}

// looseLen returns the element count of a JSON array, or 1 for a non-empty
// scalar. Used for reference/document presence checks.
func looseLen(b json.RawMessage) int {
	if len(b) == 0 {
		return 0
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err == nil {
		return len(arr)
	}
	if s := looseString(b); s != "" {
		return 1
	}
	return 0
}

func looseTime(b json.RawMessage) *time.Time {
	s := looseString(b)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
