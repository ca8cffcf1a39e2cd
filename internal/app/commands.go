package app

import (
	"context"
	"fmt"

	"stages_recup/internal/domain"
)

// ImportService pulls the CMS stage export into the store. Stage rows are
// owned by the CMS; the API process only ever reads them.
type ImportService struct {
	feed  domain.FeedClient
	repo  domain.StageRepository
	cache domain.Cache
}

func NewImportService(f domain.FeedClient, r domain.StageRepository, c domain.Cache) *ImportService {
	return &ImportService{feed: f, repo: r, cache: c}
}

// FetchFeed returns the raw export records. Mapping happens per record in
// ImportStage so one malformed row cannot sink the whole run.
func (s *ImportService) FetchFeed(ctx context.Context) ([]map[string]any, error) {
	return s.feed.ListStages(ctx)
}

// ImportStage normalizes one export record and upserts it, evicting the
// cached copy of that stage. Returns the stage id for logging.
func (s *ImportService) ImportStage(ctx context.Context, raw map[string]any) (string, error) {
	st, err := mapStage(raw)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpsertStage(ctx, st); err != nil {
		return st.ID, fmt.Errorf("upsert stage %s: %w", st.ID, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, "stage:"+st.ID)
	}
	return st.ID, nil
}

// InvalidateCities drops the cached distinct-cities list; run once after an
// import pass since any upsert may introduce a new city.
func (s *ImportService) InvalidateCities(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, "stages:cities")
	}
}
