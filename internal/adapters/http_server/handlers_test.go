package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "stages_recup/internal/adapters/http_server"
	"stages_recup/internal/app"
	"stages_recup/internal/domain"
)

// ---- fakes ----

type fakeStageRepo struct {
	stages []domain.Stage
	cities []string
}

func (f *fakeStageRepo) ListStages(ctx context.Context, q domain.StageListQuery) ([]domain.Stage, error) {
	return f.stages, nil
}
func (f *fakeStageRepo) GetStage(ctx context.Context, id string) (domain.Stage, error) {
	for _, s := range f.stages {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Stage{}, domain.ErrNotFound
}
func (f *fakeStageRepo) DistinctCities(ctx context.Context) ([]string, error) { return f.cities, nil }
func (f *fakeStageRepo) UpsertStage(ctx context.Context, s domain.Stage) error {
	return nil
}

type fakeBookingRepo struct {
	byRef map[string]domain.Booking
}

func (f *fakeBookingRepo) CountByReferencePrefix(ctx context.Context, prefix string) (int, error) {
	n := 0
	for ref := range f.byRef {
		if strings.HasPrefix(ref, prefix) {
			n++
		}
	}
	return n, nil
}
func (f *fakeBookingRepo) InsertBooking(ctx context.Context, b domain.Booking) error {
	if f.byRef == nil {
		f.byRef = map[string]domain.Booking{}
	}
	if _, ok := f.byRef[b.Reference]; ok {
		return domain.ErrDuplicateReference
	}
	f.byRef[b.Reference] = b
	return nil
}
func (f *fakeBookingRepo) GetByReference(ctx context.Context, ref string) (domain.BookingView, error) {
	b, ok := f.byRef[ref]
	if !ok {
		return domain.BookingView{}, domain.ErrNotFound
	}
	return domain.BookingView{Booking: b, StageCity: "PARIS"}, nil
}

type noCache struct{}

func (noCache) Get(ctx context.Context, key string, dst any) (bool, error) { return false, nil }
func (noCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	return nil
}
func (noCache) Del(ctx context.Context, key string) error { return nil }

// ---- helpers ----

func pf(f float64) *float64 { return &f }

func newTestServer(stages *fakeStageRepo, bookings *fakeBookingRepo) *httptest.Server {
	if bookings == nil {
		bookings = &fakeBookingRepo{}
	}
	q := app.NewQueryService(stages, bookings, noCache{}, time.Minute, time.Second)
	b := app.NewBookingService(stages, bookings, time.Second)
	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{Q: q, B: b})
	return httptest.NewServer(srv.Mux())
}

func decodeBody(t *testing.T, res *http.Response, dst any) {
	t.Helper()
	defer res.Body.Close()
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func seedStages() *fakeStageRepo {
	start, _ := time.Parse("2006-01-02", "2025-04-01")
	return &fakeStageRepo{
		stages: []domain.Stage{
			{
				ID: "st-1", City: "PARIS", PostalCode: "75001", FullAddress: "1 rue Test",
				DateStart: start, DateEnd: start.AddDate(0, 0, 1), Price: 230,
				Lat: pf(48.8566), Lon: pf(2.3522),
			},
			{
				ID: "st-2", City: "LYON", PostalCode: "69001", FullAddress: "2 rue Test",
				DateStart: start.AddDate(0, 0, 7), DateEnd: start.AddDate(0, 0, 8), Price: 210,
				Lat: pf(45.7640), Lon: pf(4.8357),
			},
		},
		cities: []string{"LYON", "PARIS"},
	}
}

// ---- tests ----

func TestStages_Cities(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/stages?action=cities")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var body struct {
		Data []string `json:"data"`
	}
	decodeBody(t, res, &body)
	if len(body.Data) != 2 || body.Data[0] != "LYON" {
		t.Fatalf("unexpected cities: %v", body.Data)
	}
}

func TestStages_GetByID(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/stages?id=st-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var body struct {
		Data struct {
			ID    string  `json:"id"`
			City  string  `json:"city"`
			Price float64 `json:"price"`
		} `json:"data"`
	}
	decodeBody(t, res, &body)
	if body.Data.ID != "st-1" || body.Data.City != "PARIS" || body.Data.Price != 230 {
		t.Fatalf("unexpected stage: %+v", body.Data)
	}
}

func TestStages_GetByID_NotFound(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/stages?id=missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", res.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, res, &body)
	if body.Error != "Stage not found" {
		t.Fatalf("unexpected error: %q", body.Error)
	}
}

func TestStages_ProximitySearch(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/stages?near=paris&radius=50&sortBy=proximite")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	var body struct {
		Data []struct {
			ID         string `json:"id"`
			DistanceKm *int   `json:"distance_km"`
		} `json:"data"`
	}
	decodeBody(t, res, &body)
	if len(body.Data) != 1 || body.Data[0].ID != "st-1" {
		t.Fatalf("expected only the Paris stage, got %+v", body.Data)
	}
	if body.Data[0].DistanceKm == nil {
		t.Fatalf("proximity result should carry distance_km")
	}
}

func TestStages_UnknownNearCity(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/stages?near=atlantis")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", res.StatusCode)
	}
}

func TestCreateBooking_Created(t *testing.T) {
	bookings := &fakeBookingRepo{}
	ts := newTestServer(seedStages(), bookings)
	defer ts.Close()

	payload := `{
		"stage_id": "st-1", "civilite": "M", "nom": "Martin", "prenom": "Paul",
		"date_naissance": "1990-05-14", "adresse": "1 rue de la Paix",
		"code_postal": "75002", "ville": "Paris",
		"email": "paul@example.fr", "email_confirmation": "paul@example.fr",
		"telephone_mobile": "0601020304", "cgv_accepted": true
	}`
	res, err := http.Post(ts.URL+"/v1/bookings", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("status %d, want 201", res.StatusCode)
	}
	var body struct {
		Data struct {
			ID               string `json:"id"`
			BookingReference string `json:"booking_reference"`
		} `json:"data"`
	}
	decodeBody(t, res, &body)
	if body.Data.ID == "" || !strings.HasPrefix(body.Data.BookingReference, "BK-") {
		t.Fatalf("unexpected body: %+v", body.Data)
	}
}

func TestCreateBooking_MissingField(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	payload := `{"stage_id": "st-1", "civilite": "M"}`
	res, err := http.Post(ts.URL+"/v1/bookings", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", res.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, res, &body)
	if !strings.Contains(body.Error, "nom") {
		t.Fatalf("error should name the missing field: %q", body.Error)
	}
}

func TestGetBooking_NotFound(t *testing.T) {
	ts := newTestServer(seedStages(), &fakeBookingRepo{})
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/bookings?ref=BK-2099-000001")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status %d, want 404", res.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decodeBody(t, res, &body)
	if body.Error != "Booking not found" {
		t.Fatalf("unexpected error: %q", body.Error)
	}
}

func TestGetBooking_MissingRef(t *testing.T) {
	ts := newTestServer(seedStages(), nil)
	defer ts.Close()

	res, err := http.Get(ts.URL + "/v1/bookings")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", res.StatusCode)
	}
}
