// internal/adapters/http_server/handlers.go
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"stages_recup/internal/app"
	"stages_recup/internal/domain"
	"stages_recup/internal/geo"
)

type Handlers struct {
	Q *app.QueryService
	B *app.BookingService
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/stages", h.stages)
	s.mux.Get("/v1/bookings", h.getBooking)
	s.mux.Post("/v1/bookings", h.createBooking)
}

// ---- wire types ----

const dateLayout = "2006-01-02"

type stageJSON struct {
	ID           string   `json:"id"`
	City         string   `json:"city"`
	PostalCode   string   `json:"postal_code"`
	FullAddress  string   `json:"full_address"`
	LocationName *string  `json:"location_name"`
	DateStart    string   `json:"date_start"`
	DateEnd      string   `json:"date_end"`
	Price        float64  `json:"price"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	DistanceKm   *int     `json:"distance_km,omitempty"`
}

func toStageJSON(v domain.StageView) stageJSON {
	return stageJSON{
		ID:           v.ID,
		City:         v.City,
		PostalCode:   v.PostalCode,
		FullAddress:  v.FullAddress,
		LocationName: v.LocationName,
		DateStart:    v.DateStart.Format(dateLayout),
		DateEnd:      v.DateEnd.Format(dateLayout),
		Price:        v.Price,
		Latitude:     v.Lat,
		Longitude:    v.Lon,
		DistanceKm:   v.DistanceKm,
	}
}

type bookingJSON struct {
	ID                string  `json:"id"`
	StageID           string  `json:"stage_id"`
	BookingReference  string  `json:"booking_reference"`
	Civilite          string  `json:"civilite"`
	Nom               string  `json:"nom"`
	Prenom            string  `json:"prenom"`
	DateNaissance     string  `json:"date_naissance"`
	Adresse           string  `json:"adresse"`
	CodePostal        string  `json:"code_postal"`
	Ville             string  `json:"ville"`
	Email             string  `json:"email"`
	TelephoneMobile   string  `json:"telephone_mobile"`
	GuaranteeSerenite bool    `json:"guarantee_serenite"`
	CGVAccepted       bool    `json:"cgv_accepted"`
	City              string  `json:"city"`
	FullAddress       string  `json:"full_address"`
	DateStart         string  `json:"date_start"`
	DateEnd           string  `json:"date_end"`
	Price             float64 `json:"price"`
}

type createBookingBody struct {
	StageID           string `json:"stage_id"`
	Civilite          string `json:"civilite"`
	Nom               string `json:"nom"`
	Prenom            string `json:"prenom"`
	DateNaissance     string `json:"date_naissance"`
	Adresse           string `json:"adresse"`
	CodePostal        string `json:"code_postal"`
	Ville             string `json:"ville"`
	Email             string `json:"email"`
	EmailConfirmation string `json:"email_confirmation"`
	TelephoneMobile   string `json:"telephone_mobile"`
	GuaranteeSerenite bool   `json:"guarantee_serenite"`
	CGVAccepted       bool   `json:"cgv_accepted"`
}

// ---- response helpers ----

func writeData(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"data": v}); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		log.Error().Err(err).Msg("write JSON error failed")
	}
}

// serviceError maps the domain taxonomy onto status codes without leaking
// store internals (those were already logged where they happened).
func serviceError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case domain.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ---- stages ----

// stages serves the whole read surface behind one route, dispatching on
// query params the way the legacy endpoint did:
//
//	?action=cities         distinct city list
//	?id=<id>               single stage
//	everything else        filtered/sorted search
func (h *Handlers) stages(w http.ResponseWriter, r *http.Request) {
	qp := r.URL.Query()

	if qp.Get("action") == "cities" {
		cities, err := h.Q.ListCities(r.Context())
		if err != nil {
			serviceError(w, err, "Not found")
			return
		}
		if cities == nil {
			cities = []string{}
		}
		writeData(w, http.StatusOK, cities)
		return
	}

	if id := qp.Get("id"); id != "" {
		st, err := h.Q.GetStage(r.Context(), id)
		if err != nil {
			serviceError(w, err, "Stage not found")
			return
		}
		writeData(w, http.StatusOK, toStageJSON(domain.StageView{Stage: st}))
		return
	}

	q, err := parseSearchQuery(qp)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := h.Q.SearchStages(r.Context(), q)
	if err != nil {
		serviceError(w, err, "Not found")
		return
	}
	out := make([]stageJSON, 0, len(views))
	for _, v := range views {
		out = append(out, toStageJSON(v))
	}
	writeData(w, http.StatusOK, out)
}

func parseSearchQuery(qp map[string][]string) (domain.StagesQuery, error) {
	get := func(k string) string {
		if vs := qp[k]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}

	q := domain.StagesQuery{
		SortBy:    strings.ToLower(get("sortBy")),
		SortOrder: strings.ToLower(get("sortOrder")),
	}
	if c := get("city"); c != "" {
		q.City = &c
	}
	if cs := get("cities"); cs != "" {
		for _, c := range strings.Split(cs, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Cities = append(q.Cities, c)
			}
		}
	}

	// Proximity center: explicit lat/lon wins over a named city.
	latS, lonS := get("lat"), get("lon")
	switch {
	case latS != "" || lonS != "":
		lat, errLat := strconv.ParseFloat(latS, 64)
		lon, errLon := strconv.ParseFloat(lonS, 64)
		if errLat != nil || errLon != nil {
			return q, &domain.ValidationError{Field: "lat/lon", Reason: "must both be decimal degrees"}
		}
		q.Near = &domain.Coords{Lat: lat, Lon: lon}
	case get("near") != "":
		c, ok := geo.CityCoords(get("near"))
		if !ok {
			return q, &domain.ValidationError{Field: "near", Reason: "unknown city"}
		}
		q.Near = &c
	}

	if rs := get("radius"); rs != "" {
		if q.Near == nil {
			return q, &domain.ValidationError{Field: "radius", Reason: "requires near or lat/lon"}
		}
		radius, err := strconv.ParseFloat(rs, 64)
		if err != nil || radius <= 0 {
			return q, &domain.ValidationError{Field: "radius", Reason: "must be a positive number of kilometers"}
		}
		q.RadiusKm = &radius
	}
	return q, nil
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var body createBookingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := h.B.CreateBooking(r.Context(), app.CreateBookingInput{
		StageID:           body.StageID,
		Civilite:          body.Civilite,
		Nom:               body.Nom,
		Prenom:            body.Prenom,
		DateNaissance:     body.DateNaissance,
		Adresse:           body.Adresse,
		CodePostal:        body.CodePostal,
		Ville:             body.Ville,
		Email:             body.Email,
		EmailConfirmation: body.EmailConfirmation,
		TelephoneMobile:   body.TelephoneMobile,
		GuaranteeSerenite: body.GuaranteeSerenite,
		CGVAccepted:       body.CGVAccepted,
	})
	if err != nil {
		serviceError(w, err, "Stage not found")
		return
	}
	writeData(w, http.StatusCreated, map[string]string{
		"id":                b.ID,
		"booking_reference": b.Reference,
	})
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if ref == "" {
		writeError(w, http.StatusBadRequest, "missing ref parameter")
		return
	}
	bv, err := h.Q.GetBookingByReference(r.Context(), ref)
	if err != nil {
		serviceError(w, err, "Booking not found")
		return
	}
	writeData(w, http.StatusOK, bookingJSON{
		ID:                bv.ID,
		StageID:           bv.StageID,
		BookingReference:  bv.Reference,
		Civilite:          bv.Civilite,
		Nom:               bv.Nom,
		Prenom:            bv.Prenom,
		DateNaissance:     bv.DateNaissance.Format(dateLayout),
		Adresse:           bv.Adresse,
		CodePostal:        bv.CodePostal,
		Ville:             bv.Ville,
		Email:             bv.Email,
		TelephoneMobile:   bv.TelephoneMobile,
		GuaranteeSerenite: bv.GuaranteeSerenite,
		CGVAccepted:       bv.CGVAccepted,
		City:              bv.StageCity,
		FullAddress:       bv.StageFullAddress,
		DateStart:         bv.StageDateStart.Format(dateLayout),
		DateEnd:           bv.StageDateEnd.Format(dateLayout),
		Price:             bv.StagePrice,
	})
}
