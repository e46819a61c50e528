package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sgurin/geosync/internal/adapter"
	"github.com/sgurin/geosync/internal/config"
	"github.com/sgurin/geosync/internal/fetcher"
	"github.com/sgurin/geosync/internal/loader"
	"github.com/sgurin/geosync/internal/logger"
	"github.com/sgurin/geosync/internal/pipeline"
	"github.com/sgurin/geosync/internal/report"
	"github.com/sgurin/geosync/internal/store"
	"github.com/sgurin/geosync/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("geosync")
	cfg, err := config.GetConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	secrets, err := config.GetSecrets(cfg.SecretsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("error getting secrets")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Run archival is best-effort: a broken local archive downgrades to
	// warnings, it never blocks syncing.
	var runs store.RunRepository
	if db, dbErr := store.NewConnectSQLite(ctx, cfg.Archive, log); dbErr != nil {
		log.Warn().Err(dbErr).Msg("run archive unavailable; continuing without archival")
	} else if migErr := migrations.Migrate(db.DB); migErr != nil {
		log.Warn().Err(migErr).Msg("run archive migration failed; continuing without archival")
	} else {
		runs = store.NewRunRepository(db, log)
	}

	layer, err := adapter.NewRESTLayerAdapter(secrets, cfg.Adapter, cfg.Sync.KeyColumn, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating layer adapter")
	}

	fetch, err := fetcher.NewSFTPFetcher(secrets, cfg.Fetch, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating fetcher")
	}

	rotator, err := fetcher.NewRotator(cfg.Fetch.ScratchDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating scratch rotator")
	}

	notifier := report.Multi{report.NewLogNotifier(log)}
	if secrets.NotifierURL != "" {
		notifier = append(notifier, report.NewWebhookNotifier(secrets.NotifierURL))
	}

	p := pipeline.New(cfg, rotator, fetch, loader.NewCSVLoader(cfg.Sync, log), layer, notifier, runs, log)

	if cfg.Workers.SyncInterval > 0 {
		runDaemon(ctx, p, cfg, log)
		return
	}

	if _, err := p.Run(ctx); err != nil {
		os.Exit(1)
	}
}

// runDaemon performs one immediate run, then keeps re-running on the
// configured interval until the process is signalled to stop.
func runDaemon(ctx context.Context, p *pipeline.Pipeline, cfg *config.Config, log *logger.Logger) {
	log.Info().Dur("interval", cfg.Workers.SyncInterval).Msg("starting in daemon mode")

	_, _ = p.Run(ctx)

	job := pipeline.NewJob(p)
	job.Start(ctx, cfg.Workers.SyncInterval)

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	job.Stop()
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
