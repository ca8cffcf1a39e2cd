package domain

import "context"

// Sort keys accepted by the search pipeline. "proximite" keeps the public
// API's historical spelling.
const (
	SortByDate      = "date"
	SortByPrice     = "price"
	SortByCity      = "city"
	SortByProximite = "proximite"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// StagesQuery is the full search request handled by the pipeline.
type StagesQuery struct {
	City      *string  // single-city filter, case-insensitive exact match
	Cities    []string // OR'd with City
	SortBy    string   // SortBy* constant; defaults to date
	SortOrder string   // asc|desc; proximite is always asc
	Near      *Coords  // enables proximity filtering
	RadiusKm  *float64 // nil means the default radius
}

// StageListQuery is the portion of a search the repository can push into SQL
// (city match + whitelisted ORDER BY). Proximity never reaches SQL.
type StageListQuery struct {
	City      *string
	Cities    []string
	SortBy    string
	SortOrder string
}

type StageRepository interface {
	// Read paths
	ListStages(ctx context.Context, q StageListQuery) ([]Stage, error)
	GetStage(ctx context.Context, id string) (Stage, error)
	DistinctCities(ctx context.Context) ([]string, error)

	// Write path, used only by the importer
	UpsertStage(ctx context.Context, s Stage) error
}

type BookingRepository interface {
	// CountByReferencePrefix counts bookings whose reference starts with
	// prefix (e.g. "BK-2025-"). The result is only a starting guess for the
	// allocator; the unique index is what enforces correctness.
	CountByReferencePrefix(ctx context.Context, prefix string) (int, error)

	// InsertBooking returns ErrDuplicateReference when the unique index on
	// booking_reference rejects the row.
	InsertBooking(ctx context.Context, b Booking) error

	GetByReference(ctx context.Context, ref string) (BookingView, error)
}

// FeedClient fetches the raw CMS stage export. Values are untyped because the
// feed mixes string and numeric representations across backends; the import
// mapper normalizes them.
type FeedClient interface {
	ListStages(ctx context.Context) ([]map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
