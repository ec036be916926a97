package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bangumi/internal/scraper"
	"bangumi/pkg/database"
	"bangumi/pkg/models"
)

func newRunsCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs from the run ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.resolveDBPath()
			if err != nil {
				return err
			}
			cfg := database.Config{Path: path}
			if !cfg.Enabled() {
				return errors.New("no catalog database configured (set --db or BANGUMI_DB_PATH)")
			}

			db, err := database.OpenAndMigrate(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := scraper.NewLedger(db).List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Number of runs to show")
	return cmd
}

func renderRuns(runs []scraper.RunRecord) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		took := "-"
		if r.FinishedAt != nil {
			took = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		rows = append(rows, []string{
			shortID(r.ID),
			r.Username,
			r.Status,
			strconv.Itoa(r.Counts[models.CategoryWant]),
			strconv.Itoa(r.Counts[models.CategoryWatched]),
			strconv.Itoa(r.Counts[models.CategoryWatching]),
			strconv.Itoa(r.Skipped),
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			took,
			r.Error,
		})
	}
	return view{
		title: "Recent runs",
		style: table.StyleRounded,
		columns: []column{
			{name: "Run"}, {name: "User"}, {name: "Status"},
			{name: "Want", numeric: true}, {name: "Watched", numeric: true}, {name: "Watching", numeric: true},
			{name: "Skipped", numeric: true}, {name: "Started"}, {name: "Took", numeric: true}, {name: "Error"},
		},
		rows: rows,
	}.render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
