package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"

	"stages_recup/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---- stages ----

func (r *Repo) UpsertStage(ctx context.Context, s domain.Stage) error {
	_, err := r.db.ExecContext(ctx, upsertStageSQL,
		s.ID,
		s.City,
		s.PostalCode,
		s.FullAddress,
		valStr(s.LocationName),
		s.DateStart,
		s.DateEnd,
		s.Price,
		valF64(s.Lat),
		valF64(s.Lon),
	)
	return err
}

func (r *Repo) GetStage(ctx context.Context, id string) (domain.Stage, error) {
	row := r.db.QueryRowContext(ctx, getStageSQL, id)
	s, err := scanStage(row)
	if err == sql.ErrNoRows {
		return domain.Stage{}, domain.ErrNotFound
	}
	return s, err
}

// orderColumns whitelists the sortable columns; anything else falls back to
// date_start, exactly like the legacy endpoint.
var orderColumns = map[string]string{
	domain.SortByDate:  "date_start",
	domain.SortByPrice: "price",
	domain.SortByCity:  "city",
}

func (r *Repo) ListStages(ctx context.Context, q domain.StageListQuery) ([]domain.Stage, error) {
	sqlStr := listStagesSQL
	var args []any

	// City and Cities are OR'd: one IN over the union, so a stage matching
	// either predicate survives.
	cities := q.Cities
	if q.City != nil {
		cities = append([]string{*q.City}, cities...)
	}
	if len(cities) > 0 {
		sqlStr += " AND UPPER(city) IN (?" + strings.Repeat(",?", len(cities)-1) + ")"
		for _, c := range cities {
			args = append(args, strings.ToUpper(c))
		}
	}

	col, ok := orderColumns[q.SortBy]
	if !ok {
		col = "date_start"
	}
	dir := "ASC"
	if q.SortOrder == domain.SortDesc {
		dir = "DESC"
	}
	sqlStr += " ORDER BY " + col + " " + dir

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) DistinctCities(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, distinctCitiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanStage(row rowScanner) (domain.Stage, error) {
	var s domain.Stage
	var locName sql.NullString
	var lat, lon sql.NullFloat64
	if err := row.Scan(
		&s.ID,
		&s.City,
		&s.PostalCode,
		&s.FullAddress,
		&locName,
		&s.DateStart,
		&s.DateEnd,
		&s.Price,
		&lat, &lon,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return domain.Stage{}, err
	}
	if locName.Valid {
		n := locName.String
		s.LocationName = &n
	}
	if lat.Valid && lon.Valid {
		la, lo := lat.Float64, lon.Float64
		s.Lat, s.Lon = &la, &lo
	}
	return s, nil
}

// ---- bookings ----

func (r *Repo) CountByReferencePrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReferencesSQL, prefix+"%").Scan(&n)
	return n, err
}

func (r *Repo) InsertBooking(ctx context.Context, b domain.Booking) error {
	_, err := r.db.ExecContext(ctx, insertBookingSQL,
		b.ID,
		b.StageID,
		b.Reference,
		b.Civilite,
		b.Nom,
		b.Prenom,
		b.DateNaissance,
		b.Adresse,
		b.CodePostal,
		b.Ville,
		b.Email,
		b.EmailConfirmation,
		b.TelephoneMobile,
		b.GuaranteeSerenite,
		b.CGVAccepted,
	)
	// 1062 here can only be the unique index on booking_reference: ids are
	// fresh UUIDs.
	var me *gomysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return domain.ErrDuplicateReference
	}
	return err
}

func (r *Repo) GetByReference(ctx context.Context, ref string) (domain.BookingView, error) {
	row := r.db.QueryRowContext(ctx, getBookingByRefSQL, ref)

	var bv domain.BookingView
	err := row.Scan(
		&bv.ID,
		&bv.StageID,
		&bv.Reference,
		&bv.Civilite,
		&bv.Nom,
		&bv.Prenom,
		&bv.DateNaissance,
		&bv.Adresse,
		&bv.CodePostal,
		&bv.Ville,
		&bv.Email,
		&bv.EmailConfirmation,
		&bv.TelephoneMobile,
		&bv.GuaranteeSerenite,
		&bv.CGVAccepted,
		&bv.CreatedAt,
		&bv.UpdatedAt,
		&bv.StageCity,
		&bv.StageFullAddress,
		&bv.StageDateStart,
		&bv.StageDateEnd,
		&bv.StagePrice,
	)
	if err == sql.ErrNoRows {
		return domain.BookingView{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.BookingView{}, err
	}
	return bv, nil
}
