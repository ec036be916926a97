package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bangumi/internal/fetcher"
	"bangumi/internal/store"
	"bangumi/pkg/models"
)

func apiURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}

func newTotalsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show how many entries every category holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			totals, err := fetcher.Get[map[string]int](cmd.Context(), opts.client(), apiURL(opts.baseURL, "/api/bangumi_total"), nil)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(models.Categories))
			sum := 0
			for _, key := range models.Categories {
				n := (*totals)[key]
				sum += n
				rows = append(rows, []string{key, strconv.Itoa(n)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), view{
				style:   table.StyleLight,
				columns: []column{{name: "Category"}, {name: "Total", numeric: true}},
				rows:    rows,
				footer:  []string{"All", strconv.Itoa(sum)},
			}.render())
			return nil
		},
	}
}

func newPageCommand(opts *options) *cobra.Command {
	var (
		category      string
		offset, limit int
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Show one page of a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := fetchPage(cmd, opts, category, offset, limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(page.Data))
			for _, e := range page.Data {
				rows = append(rows, []string{
					strconv.FormatInt(e.SubjectID, 10),
					e.NameCN,
					e.Name,
					fmt.Sprintf("%d/%d", e.EpStatus, e.Eps),
					e.Date,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), view{
				title:   category,
				caption: fmt.Sprintf("%d-%d of %d", offset, offset+len(page.Data), page.Total),
				style:   table.StyleLight,
				columns: []column{
					{name: "ID", numeric: true}, {name: "Name CN"}, {name: "Name"},
					{name: "Progress", numeric: true}, {name: "Date"},
				},
				rows: rows,
			}.render())
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "type", models.CategoryWatching, "Category: want, watched or watching")
	cmd.Flags().IntVar(&offset, "offset", 0, "Offset")
	cmd.Flags().IntVar(&limit, "limit", 12, "Page size")
	return cmd
}

func fetchPage(cmd *cobra.Command, opts *options, category string, offset, limit int) (*store.PageResult, error) {
	params := fetcher.Params{
		{Key: "type", Value: category},
		{Key: "offset", Value: offset},
		{Key: "limit", Value: limit},
	}
	return fetcher.Get[store.PageResult](cmd.Context(), opts.client(), apiURL(opts.baseURL, "/api/bangumi"), params)
}
