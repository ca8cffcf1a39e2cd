package geo

import (
	"strings"

	"stages_recup/internal/domain"
)

// City centers (WGS84) used to resolve a "near this city" search into a
// coordinate pair. Keys are upper-case city names.
var cityCoordinates = map[string]domain.Coords{
	// Marseille area
	"MARSEILLE":       {Lat: 43.2965, Lon: 5.3698},
	"AIX-EN-PROVENCE": {Lat: 43.5297, Lon: 5.4474},
	"AUBAGNE":         {Lat: 43.2928, Lon: 5.5706},
	"VITROLLES":       {Lat: 43.4553, Lon: 5.2478},
	"LA CIOTAT":       {Lat: 43.1747, Lon: 5.6064},

	// Lyon area
	"LYON":         {Lat: 45.7640, Lon: 4.8357},
	"VILLEURBANNE": {Lat: 45.7667, Lon: 4.8797},

	// Other major cities
	"PARIS":       {Lat: 48.8566, Lon: 2.3522},
	"TOULOUSE":    {Lat: 43.6047, Lon: 1.4442},
	"NICE":        {Lat: 43.7102, Lon: 7.2620},
	"NANTES":      {Lat: 47.2184, Lon: -1.5536},
	"BORDEAUX":    {Lat: 44.8378, Lon: -0.5792},
	"MONTPELLIER": {Lat: 43.6108, Lon: 3.8767},
	"STRASBOURG":  {Lat: 48.5734, Lon: 7.7521},
	"LILLE":       {Lat: 50.6292, Lon: 3.0573},
}

// CityCoords resolves a city name (case-insensitive) to its center point.
func CityCoords(city string) (domain.Coords, bool) {
	c, ok := cityCoordinates[strings.ToUpper(strings.TrimSpace(city))]
	return c, ok
}
