package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bangumi/internal/fetcher"
	"bangumi/internal/logger"
	"bangumi/internal/scraper"
	"bangumi/pkg/database"
	"bangumi/pkg/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "scraper: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetcher.New(fetcher.WithTimeout(cfg.HTTPTimeout), fetcher.WithLogger(log))
	getter := fetcher.WithRetry(client, cfg.FetchRetries, 0)
	writer := scraper.DirWriter{Dir: cfg.DataDir}

	// The calendar is independent of the collection: its failure is only logged.
	if _, err := scraper.NewCalendarBuilder(getter, cfg.APIURL, writer, log).Build(ctx); err != nil {
		log.Error("Calendar build failed", logger.Error(err))
	}

	pipeline := &scraper.Pipeline{
		Username:   cfg.User,
		Paginator:  scraper.NewPaginator(getter, cfg.APIURL, log),
		Reconciler: scraper.NewReconciler(getter, cfg.MirrorURL, log),
		Writer:     writer,
		Log:        log,
	}
	pipeline.Paginator.PageSize = cfg.PageSize

	dbCfg := database.Config{Path: cfg.DBPath}
	if dbCfg.Enabled() {
		db, err := database.OpenAndMigrate(dbCfg)
		if err != nil {
			log.Warn("Subject catalog unavailable", logger.String("path", dbCfg.Path), logger.Error(err))
		} else {
			defer db.Close()
			pipeline.Catalog = scraper.NewCatalog(db)
			pipeline.Ledger = scraper.NewLedger(db)
		}
	}

	log.Info("Starting collection build",
		logger.String("user", cfg.User),
		logger.String("data_dir", cfg.DataDir),
	)

	report, err := pipeline.Run(ctx)
	if err != nil {
		if errors.Is(err, scraper.ErrNoCollection) {
			log.Error("No collection found", logger.String("user", cfg.User), logger.Error(err))
		} else {
			log.Error("Collection build failed", logger.Error(err))
		}
		return err
	}

	log.Info("Collection build finished",
		logger.String("run_id", report.RunID),
		logger.Any("counts", report.Counts),
		logger.Int("skipped", report.Skipped),
		logger.Int("dropped", report.Dropped),
		logger.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
	return nil
}
