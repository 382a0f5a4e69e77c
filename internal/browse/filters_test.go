package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/geo"
	"github.com/quantumfinancegroupltd-commits/Local-Link-sub004/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestNormalize_RadiusGate(t *testing.T) {
	f := DefaultFilters()
	f.Sort = SortNearest
	f.RadiusKm = floatPtr(10)

	// No resolved origin: radius resets, nearest falls back to best.
	got := f.Normalize()
	assert.Nil(t, got.RadiusKm)
	assert.Equal(t, SortBest, got.Sort)

	// With an origin both facets survive.
	f.Origin = &geo.Point{Lat: 5.6, Lng: -0.2}
	got = f.Normalize()
	assert.NotNil(t, got.RadiusKm)
	assert.Equal(t, SortNearest, got.Sort)
}

func TestNormalize_InvalidSelectors(t *testing.T) {
	f := Filters{Tier: "platinum", Sort: "random", RadiusKm: floatPtr(-5)}
	got := f.Normalize()
	assert.Equal(t, TierAll, got.Tier)
	assert.Equal(t, SortBest, got.Sort)
	assert.Nil(t, got.RadiusKm)
}

func TestTierFilter_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter TierFilter
		tier   model.Tier
		want   bool
	}{
		{"all passes everything", TierAll, model.TierUnverified, true},
		{"verified-any accepts bronze", TierAnyVerified, model.TierBronze, true},
		{"verified-any accepts gold", TierAnyVerified, model.TierGold, true},
		{"verified-any rejects unverified", TierAnyVerified, model.TierUnverified, false},
		{"exact silver rejects gold", TierFilter(model.TierSilver), model.TierGold, false},
		{"exact silver accepts silver", TierFilter(model.TierSilver), model.TierSilver, true},
		{"exact unverified", TierFilter(model.TierUnverified), model.TierUnverified, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(tt.tier))
		})
	}
}
