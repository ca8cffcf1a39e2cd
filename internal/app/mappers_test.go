package app

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMapStage_NumericFields(t *testing.T) {
	raw := map[string]any{
		"id": "st-1", "city": "PARIS", "postal_code": "75001",
		"full_address": "1 rue Test",
		"date_start":   "2025-04-01", "date_end": "2025-04-02",
		"price": 230.0, "latitude": 48.8566, "longitude": 2.3522,
	}
	st, err := mapStage(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.Price != 230 || st.Lat == nil || *st.Lat != 48.8566 {
		t.Fatalf("unexpected stage: %+v", st)
	}
}

// The PHP backend serializes price and coordinates as strings.
func TestMapStage_StringTypedNumbers(t *testing.T) {
	raw := map[string]any{
		"id": "st-2", "city": "LYON", "postal_code": "69001",
		"full_address": "2 rue Test",
		"date_start":   "2025-04-01", "date_end": "2025-04-03",
		"price": "210.00", "latitude": "45.7640", "longitude": "4.8357",
	}
	st, err := mapStage(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.Price != 210 {
		t.Fatalf("price = %v, want 210", st.Price)
	}
	if st.Lat == nil || *st.Lat != 45.7640 || st.Lon == nil || *st.Lon != 4.8357 {
		t.Fatalf("coords not normalized: %+v", st)
	}
}

func TestMapStage_JSONNumberAndAliases(t *testing.T) {
	var raw map[string]any
	dec := json.NewDecoder(strings.NewReader(`{
		"stage_id": "st-3", "ville": "NICE", "code_postal": "06000",
		"adresse": "3 rue Test", "lieu": "Salle A",
		"start_date": "2025-05-01", "end_date": "2025-05-02",
		"prix": 199.5, "lat": "43.7102", "lng": "7.2620"
	}`))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	st, err := mapStage(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.ID != "st-3" || st.City != "NICE" || st.Price != 199.5 {
		t.Fatalf("aliases not applied: %+v", st)
	}
	if st.LocationName == nil || *st.LocationName != "Salle A" {
		t.Fatalf("location_name alias not applied: %+v", st)
	}
}

func TestMapStage_MissingCoordinatesAreNil(t *testing.T) {
	raw := map[string]any{
		"id": "st-4", "city": "PARIS", "postal_code": "75001",
		"full_address": "4 rue Test",
		"date_start":   "2025-04-01", "date_end": "2025-04-02",
		"price": 100.0,
	}
	st, err := mapStage(raw)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if st.Lat != nil || st.Lon != nil {
		t.Fatalf("expected nil coordinates, got %+v", st)
	}
}

func TestMapStage_RejectsBrokenRecords(t *testing.T) {
	cases := []map[string]any{
		{"city": "PARIS"}, // no id
		{"id": "x"},       // no city
		{ // end before start
			"id": "x", "city": "PARIS", "postal_code": "75001", "full_address": "a",
			"date_start": "2025-04-02", "date_end": "2025-04-01", "price": 1.0,
		},
		{ // unparsable price
			"id": "x", "city": "PARIS", "postal_code": "75001", "full_address": "a",
			"date_start": "2025-04-01", "date_end": "2025-04-02", "price": "cheap",
		},
	}
	for i, raw := range cases {
		if _, err := mapStage(raw); err == nil {
			t.Fatalf("case %d: expected error for %+v", i, raw)
		}
	}
}
