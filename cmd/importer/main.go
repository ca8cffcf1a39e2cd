package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stages_recup/internal/adapters/cms"
	"stages_recup/internal/adapters/observability"
	redisad "stages_recup/internal/adapters/redis"
	"stages_recup/internal/app"
	"stages_recup/internal/shared"
	mysqlrepo "stages_recup/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.CMSBase).
		Int("workers", cfg.Workers).
		Msg("importer starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := cms.New(cfg.CMSBase, cfg.CMSKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize CMS client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	imp := app.NewImportService(client, repo, cache)

	records, err := imp.FetchFeed(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch stage feed failed")
	}
	log.Info().Int("records", len(records)).Msg("feed fetched")

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for _, rec := range records {
		rec := rec

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(raw map[string]any) {
			defer wg.Done()
			defer sem.Release(int64(1))

			id, err := imp.ImportStage(ctx, raw)
			if err != nil {
				log.Warn().Str("id", id).Err(err).Msg("import failed")
				return
			}
			log.Info().Str("id", id).Msg("import ok")
		}(rec)
	}

	wg.Wait()
	imp.InvalidateCities(ctx)
	log.Info().Msg("import completed")
}
