package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityUnmarshal_ProductShape(t *testing.T) {
	raw := `{
		"id": 42,
		"name": "Fresh Tomatoes",
		"category": "Vegetables",
		"farm_location": "Ashaiman",
		"price": "20.5",
		"lat": 5.69,
		"lng": -0.03,
		"created_at": "2026-08-30T10:00:00Z",
		"verified": true,
		"references": ["coop-a", "coop-b"]
	}`

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "42", e.ID)
	assert.Equal(t, "Fresh Tomatoes", e.Name)
	assert.Equal(t, "Ashaiman", e.Location)
	require.NotNil(t, e.Price)
	assert.InDelta(t, 20.5, *e.Price, 0.001)
	assert.True(t, e.HasCoordinates())
	require.NotNil(t, e.CreatedAt)
	assert.Equal(t, 2026, e.CreatedAt.Year())
	assert.Equal(t, TierSilver, e.InferTier())
}

func TestEntityUnmarshal_ArtisanShape(t *testing.T) {
	raw := `{
		"id": "artisan-7",
		"title": "Kofi the Carpenter",
		"category": "Carpentry",
		"location": "Tema",
		"rating": 4.6,
		"latitude": 5.64,
		"longitude": 0.01,
		"verification_tier": "GOLD"
	}`

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Equal(t, "Kofi the Carpenter", e.Name)
	assert.Equal(t, "Tema", e.Location)
	require.NotNil(t, e.Rating)
	assert.InDelta(t, 4.6, *e.Rating, 0.001)
	assert.True(t, e.HasCoordinates())
	assert.Equal(t, TierGold, e.InferTier())
}

func TestEntityUnmarshal_MalformedFieldsDegrade(t *testing.T) {
	raw := `{
		"id": "x",
		"name": "Odd Record",
		"price": "not a number",
		"lat": "nope",
		"created_at": "yesterday",
		"verified": "yes"
	}`

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	assert.Nil(t, e.Price)
	assert.Nil(t, e.Lat)
	assert.Nil(t, e.CreatedAt)
	assert.False(t, e.HasCoordinates())
	assert.Equal(t, TierUnverified, e.InferTier())
}

func TestEntityUnmarshal_NestedVerification(t *testing.T) {
	raw := `{
		"id": "s1",
		"name": "Seam Stress",
		"verification": {"tier": "silver"}
	}`

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(raw), &e))
	assert.Equal(t, TierSilver, e.InferTier())
}

func TestEntityMarshal_RoundTrip(t *testing.T) {
	price := 12.0
	lat, lng := 5.6, -0.2
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	in := Entity{
		ID:        "p1",
		Name:      "Basket",
		Category:  "Crafts",
		Location:  "Bolgatanga",
		Price:     &price,
		Lat:       &lat,
		Lng:       &lng,
		CreatedAt: &created,
		Verification: Verification{
			Tier: "gold",
		},
	}

	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Entity
	require.NoError(t, json.Unmarshal(data, &out))

	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.Name, out.Name)
	assert.Equal(t, in.Location, out.Location)
	require.NotNil(t, out.Price)
	assert.Equal(t, price, *out.Price)
	assert.True(t, out.HasCoordinates())
	assert.Equal(t, TierGold, out.InferTier())
	require.NotNil(t, out.CreatedAt)
	assert.True(t, created.Equal(*out.CreatedAt))
}
