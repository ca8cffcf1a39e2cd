package geo_test

import (
	"math"
	"testing"

	"stages_recup/internal/domain"
	"stages_recup/internal/geo"
)

func pfloat(f float64) *float64 { return &f }

var (
	paris = domain.Coords{Lat: 48.8566, Lon: 2.3522}
	lyon  = domain.Coords{Lat: 45.7640, Lon: 4.8357}
)

func TestDistance_ParisLyon(t *testing.T) {
	d := geo.Distance(paris, lyon)
	// Great-circle Paris<->Lyon is about 392 km.
	if math.Abs(d-392) > 2 {
		t.Fatalf("Paris-Lyon distance = %.1f km, want ~392", d)
	}
	// Symmetric.
	if rev := geo.Distance(lyon, paris); math.Abs(rev-d) > 1e-9 {
		t.Fatalf("distance not symmetric: %v vs %v", d, rev)
	}
}

func TestDistance_Zero(t *testing.T) {
	if d := geo.Distance(paris, paris); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}
}

func TestWithinRadius_FiltersAndAttachesDistance(t *testing.T) {
	stages := []domain.Stage{
		{ID: "a", City: "PARIS", Price: 230, Lat: pfloat(48.8566), Lon: pfloat(2.3522)},
		{ID: "b", City: "LYON", Price: 210, Lat: pfloat(45.7640), Lon: pfloat(4.8357)},
	}
	center := domain.Coords{Lat: 48.85, Lon: 2.35}

	got := geo.WithinRadius(stages, center, 50)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only stage a within 50km, got %+v", got)
	}
	if got[0].DistanceKm == nil || *got[0].DistanceKm > 1 {
		t.Fatalf("stage a distance = %v, want 0 or 1 km", got[0].DistanceKm)
	}
}

func TestWithinRadius_SkipsStagesWithoutCoords(t *testing.T) {
	stages := []domain.Stage{
		{ID: "no-coords", City: "PARIS"},
		{ID: "lat-only", City: "PARIS", Lat: pfloat(48.85)},
	}
	got := geo.WithinRadius(stages, paris, 1000)
	if len(got) != 0 {
		t.Fatalf("stages without coordinates must be excluded, got %+v", got)
	}
}

func TestWithinRadius_RoundedBoundary(t *testing.T) {
	// ~0.39 km east of center: rounds to 0 km, inside any radius.
	near := domain.Stage{ID: "near", Lat: pfloat(48.8566), Lon: pfloat(2.3575)}
	got := geo.WithinRadius([]domain.Stage{near}, paris, 0)
	if len(got) != 1 {
		t.Fatalf("rounded 0 km stage should pass a 0 km radius")
	}
}

func TestCityCoords(t *testing.T) {
	c, ok := geo.CityCoords("paris")
	if !ok || c.Lat != 48.8566 || c.Lon != 2.3522 {
		t.Fatalf("CityCoords(paris) = %+v %v", c, ok)
	}
	if _, ok := geo.CityCoords("  Lyon "); !ok {
		t.Fatalf("lookup should trim and ignore case")
	}
	if _, ok := geo.CityCoords("atlantis"); ok {
		t.Fatalf("unknown city should not resolve")
	}
}
