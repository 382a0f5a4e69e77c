package geo

import (
	"fmt"
	"math"

	"github.com/twpayne/go-geom"
)

// EarthRadiusKm is the mean radius of Earth used for haversine distance.
const EarthRadiusKm = 6371.0

// Point is a resolved geographic coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// DistanceKm returns the great-circle distance in kilometers between two
// points. ok is false when any coordinate is not a finite number, so a
// missing or garbage coordinate degrades to "unknown distance" instead of
// propagating NaN into scoring.
func DistanceKm(lat1, lng1, lat2, lng2 float64) (float64, bool) {
	for _, v := range []float64{lat1, lng1, lat2, lng2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
	}

	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c, true
}

// Between is DistanceKm over two Points.
func Between(a, b Point) (float64, bool) {
	return DistanceKm(a.Lat, a.Lng, b.Lat, b.Lng)
}

// FormatKm renders a distance for display: one decimal under 10 km (floored
// at 0.1 so very close matches never show as "0.0 km"), whole kilometers
// from 10 km up.
func FormatKm(km float64) string {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return ""
	}
	if km < 10 {
		if km < 0.1 {
			km = 0.1
		}
		return fmt.Sprintf("%.1f km", km)
	}
	return fmt.Sprintf("%.0f km", math.Round(km))
}

// RadiusBounds returns a bounding box enclosing the circle of radiusKm
// around origin. It is a cheap prefilter: a point outside the box is
// certainly outside the radius, a point inside still needs the exact
// haversine check. Longitude span widens with latitude; near the poles the
// box covers all longitudes.
func RadiusBounds(origin Point, radiusKm float64) *geom.Bounds {
	if radiusKm <= 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil
	}

	dLat := (radiusKm / EarthRadiusKm) * 180 / math.Pi

	cosLat := math.Cos(origin.Lat * math.Pi / 180)
	dLng := 180.0
	if cosLat > 1e-9 {
		dLng = dLat / cosLat
	}

	minLat := math.Max(origin.Lat-dLat, -90)
	maxLat := math.Min(origin.Lat+dLat, 90)
	minLng := math.Max(origin.Lng-dLng, -180)
	maxLng := math.Min(origin.Lng+dLng, 180)

	b := geom.NewBounds(geom.XY)
	b.Set(minLng, minLat, maxLng, maxLat)
	return b
}

// InBounds reports whether the point lies within the bounding box.
// A nil bounds accepts everything.
func InBounds(b *geom.Bounds, p Point) bool {
	if b == nil {
		return true
	}
	return b.OverlapsPoint(geom.XY, []float64{p.Lng, p.Lat})
}

// RadiusCheck precomputes the bounding box for repeated within-radius
// membership tests against a fixed origin.
type RadiusCheck struct {
	Origin   Point
	RadiusKm float64
	bounds   *geom.Bounds
}

// NewRadiusCheck builds a RadiusCheck for the circle of radiusKm around origin.
func NewRadiusCheck(origin Point, radiusKm float64) *RadiusCheck {
	return &RadiusCheck{
		Origin:   origin,
		RadiusKm: radiusKm,
		bounds:   RadiusBounds(origin, radiusKm),
	}
}

// InBounds is the box prefilter: false means certainly outside the radius,
// true means the exact haversine test is still required.
func (c *RadiusCheck) InBounds(p Point) bool {
	return InBounds(c.bounds, p)
}

// Contains runs the prefilter and then the exact haversine test.
func (c *RadiusCheck) Contains(p Point) bool {
	if !c.InBounds(p) {
		return false
	}
	d, ok := Between(c.Origin, p)
	return ok && d <= c.RadiusKm
}
