package main

import (
	"time"

	"github.com/spf13/cobra"

	"bangumi/internal/fetcher"
	"bangumi/pkg/utils"
)

const defaultBaseURL = "http://localhost:8080"

type options struct {
	baseURL string
	dbPath  string
	timeout time.Duration
}

func (o *options) client() *fetcher.Client {
	return fetcher.New(fetcher.WithTimeout(o.timeout))
}

// resolveDBPath falls back to the configured catalog when --db is not set.
func (o *options) resolveDBPath() (string, error) {
	if o.dbPath != "" {
		return o.dbPath, nil
	}
	cfg, err := utils.LoadConfig()
	if err != nil {
		return "", err
	}
	return cfg.DBPath, nil
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "bangumi",
		Short:         "Inspect bangumi runs and query the collection API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "api", defaultBaseURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Catalog database path (default from BANGUMI_DB_PATH)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "HTTP timeout")

	rootCmd.AddCommand(newRunsCommand(opts))
	rootCmd.AddCommand(newTotalsCommand(opts))
	rootCmd.AddCommand(newPageCommand(opts))
	rootCmd.AddCommand(newExportCommand(opts))

	return rootCmd
}
