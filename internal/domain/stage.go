package domain

import "time"

// Stage is one scheduled point-recovery course session. Stage rows are owned
// by the CMS export; the API never mutates them.
type Stage struct {
	ID           string
	City         string
	PostalCode   string
	FullAddress  string
	LocationName *string
	DateStart    time.Time
	DateEnd      time.Time
	Price        float64
	Lat, Lon     *float64 // WGS84 degrees; nil disables proximity for this stage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Coords returns the stage position, or ok=false when either coordinate is
// missing.
func (s Stage) Coords() (Coords, bool) {
	if s.Lat == nil || s.Lon == nil {
		return Coords{}, false
	}
	return Coords{Lat: *s.Lat, Lon: *s.Lon}, true
}

type Coords struct{ Lat, Lon float64 }

// StageView is the read model returned by the search pipeline. DistanceKm is
// set only when the search was proximity-filtered; it is rounded to the
// nearest whole kilometer and is the value proximity sorting uses.
type StageView struct {
	Stage
	DistanceKm *int
}
