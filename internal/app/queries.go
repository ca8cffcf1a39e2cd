package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"stages_recup/internal/domain"
	"stages_recup/internal/geo"
)

type QueryService struct {
	stages       domain.StageRepository
	bookings     domain.BookingRepository
	cache        domain.Cache
	cacheTTL     time.Duration
	storeTimeout time.Duration
}

func NewQueryService(s domain.StageRepository, b domain.BookingRepository, c domain.Cache, cacheTTL, storeTimeout time.Duration) *QueryService {
	return &QueryService{stages: s, bookings: b, cache: c, cacheTTL: cacheTTL, storeTimeout: storeTimeout}
}

// SearchStages runs the filter+sort pipeline.
//
// Without proximity the city filter and ORDER BY are pushed into SQL. With
// proximity the radius filter runs in memory over the full stage set first
// (so the surviving set reflects only distance, not the city selection), and
// the city filter narrows it afterwards.
func (s *QueryService) SearchStages(ctx context.Context, q domain.StagesQuery) ([]domain.StageView, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	sortBy := normalizeSortBy(q.SortBy, q.Near != nil)
	order := normalizeOrder(q.SortOrder)

	if q.Near == nil {
		list, err := s.stages.ListStages(ctx, domain.StageListQuery{
			City: q.City, Cities: q.Cities, SortBy: sortBy, SortOrder: order,
		})
		if err != nil {
			return nil, storeErr(err, "list stages")
		}
		out := make([]domain.StageView, 0, len(list))
		for _, st := range list {
			out = append(out, domain.StageView{Stage: st})
		}
		return out, nil
	}

	all, err := s.stages.ListStages(ctx, domain.StageListQuery{})
	if err != nil {
		return nil, storeErr(err, "list stages")
	}
	radius := geo.DefaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	views := geo.WithinRadius(all, *q.Near, radius)
	views = filterByCity(views, q.City, q.Cities)
	sortViews(views, sortBy, order)
	return views, nil
}

func (s *QueryService) GetStage(ctx context.Context, id string) (domain.Stage, error) {
	key := "stage:" + id
	var st domain.Stage
	if ok, err := s.cache.Get(ctx, key, &st); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache get failed")
	} else if ok {
		return st, nil
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	st, err := s.stages.GetStage(ctx, id)
	if err != nil {
		return domain.Stage{}, storeErr(err, "get stage")
	}
	if err := s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds())); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return st, nil
}

func (s *QueryService) ListCities(ctx context.Context) ([]string, error) {
	const key = "stages:cities"
	var cities []string
	if ok, err := s.cache.Get(ctx, key, &cities); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache get failed")
	} else if ok {
		return cities, nil
	}
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	cities, err := s.stages.DistinctCities(ctx)
	if err != nil {
		return nil, storeErr(err, "list cities")
	}
	if err := s.cache.Set(ctx, key, cities, int(s.cacheTTL.Seconds())); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache set failed")
	}
	return cities, nil
}

func (s *QueryService) GetBookingByReference(ctx context.Context, ref string) (domain.BookingView, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	bv, err := s.bookings.GetByReference(ctx, ref)
	if err != nil {
		return domain.BookingView{}, storeErr(err, "get booking")
	}
	return bv, nil
}

func (s *QueryService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeErr keeps ErrNotFound intact and collapses everything else into
// ErrDependency; the raw cause is logged here and never reaches the client.
func storeErr(err error, op string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return err
	}
	log.Error().Err(err).Str("op", op).Msg("store call failed")
	return fmt.Errorf("%s: %w", op, domain.ErrDependency)
}

func normalizeSortBy(sortBy string, proximity bool) string {
	switch sortBy {
	case domain.SortByPrice, domain.SortByCity, domain.SortByDate:
		return sortBy
	case domain.SortByProximite:
		if proximity {
			return sortBy
		}
		// proximite without a center point cannot order anything
		return domain.SortByDate
	default:
		return domain.SortByDate
	}
}

func normalizeOrder(order string) string {
	if strings.EqualFold(order, domain.SortDesc) {
		return domain.SortDesc
	}
	return domain.SortAsc
}

func filterByCity(views []domain.StageView, city *string, cities []string) []domain.StageView {
	if city == nil && len(cities) == 0 {
		return views
	}
	wanted := make(map[string]struct{}, len(cities)+1)
	if city != nil {
		wanted[strings.ToUpper(*city)] = struct{}{}
	}
	for _, c := range cities {
		wanted[strings.ToUpper(c)] = struct{}{}
	}
	out := views[:0]
	for _, v := range views {
		if _, ok := wanted[strings.ToUpper(v.City)]; ok {
			out = append(out, v)
		}
	}
	return out
}

func sortViews(views []domain.StageView, sortBy, order string) {
	desc := order == domain.SortDesc
	sort.SliceStable(views, func(i, j int) bool {
		var less bool
		switch sortBy {
		case domain.SortByPrice:
			less = views[i].Price < views[j].Price
		case domain.SortByCity:
			less = strings.ToUpper(views[i].City) < strings.ToUpper(views[j].City)
		case domain.SortByProximite:
			// distances are always present here; proximite is ascending only
			return *views[i].DistanceKm < *views[j].DistanceKm
		default:
			less = views[i].DateStart.Before(views[j].DateStart)
		}
		if desc {
			return !less && !equalKey(views[i], views[j], sortBy)
		}
		return less
	})
}

func equalKey(a, b domain.StageView, sortBy string) bool {
	switch sortBy {
	case domain.SortByPrice:
		return a.Price == b.Price
	case domain.SortByCity:
		return strings.EqualFold(a.City, b.City)
	default:
		return a.DateStart.Equal(b.DateStart)
	}
}
