package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stages_recup/internal/domain"
)

/********** alias registry (single source of truth) **********/

// The CMS export has gone through several backends (Supabase, the PHP API,
// direct MySQL dumps) that disagree on key names and on whether numbers are
// numbers or strings. Everything is normalized here, before a record reaches
// the repository.
var stageAliases = map[string][]string{
	"id":            {"id", "stage_id"},
	"city":          {"city", "ville"},
	"postal_code":   {"postal_code", "code_postal", "zip"},
	"full_address":  {"full_address", "address", "adresse"},
	"location_name": {"location_name", "place_name", "lieu"},
	"date_start":    {"date_start", "start_date"},
	"date_end":      {"date_end", "end_date"},
	"price":         {"price", "prix"},
	"latitude":      {"latitude", "lat"},
	"longitude":     {"longitude", "lon", "lng"},
}

/********** tiny helpers **********/

func firstString(raw map[string]any, field string) string {
	for _, k := range stageAliases[field] {
		if v, ok := raw[k]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// firstFloat accepts float64, json.Number and numeric strings; the PHP
// backend serializes price and coordinates as strings.
func firstFloat(raw map[string]any, field string) (float64, bool) {
	for _, k := range stageAliases[field] {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func firstDate(raw map[string]any, field string) (time.Time, bool) {
	s := firstString(raw, field)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

/********** record mapping **********/

func mapStage(raw map[string]any) (domain.Stage, error) {
	st := domain.Stage{
		ID:          firstString(raw, "id"),
		City:        firstString(raw, "city"),
		PostalCode:  firstString(raw, "postal_code"),
		FullAddress: firstString(raw, "full_address"),
	}
	if st.ID == "" {
		return domain.Stage{}, fmt.Errorf("stage record has no id")
	}
	if st.City == "" {
		return domain.Stage{}, fmt.Errorf("stage %s has no city", st.ID)
	}
	if name := firstString(raw, "location_name"); name != "" {
		st.LocationName = &name
	}

	var ok bool
	if st.DateStart, ok = firstDate(raw, "date_start"); !ok {
		return domain.Stage{}, fmt.Errorf("stage %s has no usable date_start", st.ID)
	}
	if st.DateEnd, ok = firstDate(raw, "date_end"); !ok {
		return domain.Stage{}, fmt.Errorf("stage %s has no usable date_end", st.ID)
	}
	if !st.DateEnd.After(st.DateStart) {
		return domain.Stage{}, fmt.Errorf("stage %s ends before it starts", st.ID)
	}

	price, ok := firstFloat(raw, "price")
	if !ok || price < 0 {
		return domain.Stage{}, fmt.Errorf("stage %s has no usable price", st.ID)
	}
	st.Price = price

	// Coordinates are optional; a stage without them simply never matches a
	// proximity search.
	if lat, okLat := firstFloat(raw, "latitude"); okLat {
		if lon, okLon := firstFloat(raw, "longitude"); okLon {
			st.Lat, st.Lon = &lat, &lon
		}
	}
	return st, nil
}
