package geo

import (
	"math"

	"stages_recup/internal/domain"
)

const (
	// EarthRadiusKm is the spherical-Earth radius used by the haversine
	// formula.
	EarthRadiusKm = 6371.0

	// DefaultRadiusKm is the search radius applied when the caller does not
	// supply one.
	DefaultRadiusKm = 30.0
)

// Distance returns the great-circle distance in kilometers between two WGS84
// points, using the haversine formula.
func Distance(a, b domain.Coords) float64 {
	dLat := rad(b.Lat - a.Lat)
	dLon := rad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// RoundKm rounds a distance to the nearest whole kilometer. The rounded value
// is what clients display and what proximity sorting orders by.
func RoundKm(d float64) int { return int(math.Round(d)) }

// WithinRadius keeps the stages whose rounded distance from center is at most
// radiusKm, attaching the distance to each. Stages without coordinates cannot
// be measured and are dropped.
func WithinRadius(stages []domain.Stage, center domain.Coords, radiusKm float64) []domain.StageView {
	out := make([]domain.StageView, 0, len(stages))
	for _, s := range stages {
		c, ok := s.Coords()
		if !ok {
			continue
		}
		km := RoundKm(Distance(center, c))
		if float64(km) > radiusKm {
			continue
		}
		d := km
		out = append(out, domain.StageView{Stage: s, DistanceKm: &d})
	}
	return out
}
