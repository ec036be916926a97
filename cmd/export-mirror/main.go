package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"bangumi/internal/logger"
	"bangumi/internal/scraper"
	"bangumi/pkg/database"
	"bangumi/pkg/utils"
)

func main() {
	var (
		outDir = flag.String("out", "data/mirror", "output mirror directory")
		limit  = flag.Int("limit", 0, "how many subjects to export (0 = all)")
	)
	flag.Parse()

	if err := run(*outDir, *limit); err != nil {
		fmt.Fprintf(os.Stderr, "export-mirror: %v\n", err)
		os.Exit(1)
	}
}

func run(outDir string, limit int) error {
	cfg, err := utils.LoadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dbCfg := database.Config{Path: cfg.DBPath}
	if !dbCfg.Enabled() {
		return fmt.Errorf("BANGUMI_DB_PATH is empty: no subject catalog to export")
	}
	db, err := database.OpenAndMigrate(dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := scraper.ExportMirror(ctx, scraper.NewCatalog(db), outDir, limit)
	if err != nil {
		return err
	}

	log.Info("Exported subjects", logger.Int("count", n), logger.String("dir", outDir))
	return nil
}
