package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"bangumi/pkg/models"
)

const exportPageSize = 100

func newExportCommand(opts *options) *cobra.Command {
	var (
		category string
		format   string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a whole category as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown format %q (json or csv)", format)
			}

			var items []models.CollectionEntry
			for offset := 0; ; offset += exportPageSize {
				page, err := fetchPage(cmd, opts, category, offset, exportPageSize)
				if err != nil {
					return err
				}
				items = append(items, page.Data...)
				if len(page.Data) == 0 || len(items) >= page.Total {
					break
				}
			}

			if outPath == "" {
				outPath = category + "." + format
			}
			var err error
			if format == "csv" {
				err = writeCSV(outPath, items)
			} else {
				err = writeJSON(outPath, items)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d entries to %s\n", len(items), outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "type", models.CategoryWatched, "Category: want, watched or watching")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output path (default <type>.<format>)")
	return cmd
}

func writeJSON(path string, items []models.CollectionEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(models.NewCollectionArtifact(items), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func writeCSV(path string, items []models.CollectionEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{
		"subject_id", "name", "name_cn", "status", "ep_status", "eps", "total_episodes", "rate", "date", "updated_at",
	}); err != nil {
		return err
	}
	for _, item := range items {
		if err := writer.Write([]string{
			strconv.FormatInt(item.SubjectID, 10),
			item.Name,
			item.NameCN,
			strconv.Itoa(int(item.Status)),
			strconv.Itoa(item.EpStatus),
			strconv.Itoa(item.Eps),
			strconv.Itoa(item.TotalEpisodes),
			strconv.Itoa(item.Rate),
			item.Date,
			item.UpdatedAt,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
