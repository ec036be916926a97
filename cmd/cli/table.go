package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one table column; numeric columns are right aligned.
type column struct {
	name    string
	numeric bool
}

// view describes how a command prints its result set.
type view struct {
	title   string
	caption string
	style   table.Style
	columns []column
	rows    [][]string
	footer  []string // empty means no footer
}

func (v view) render() string {
	if len(v.columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(v.style)
	tw.SetTitle(v.title)
	tw.SetCaption(v.caption)

	tw.AppendHeader(v.fit(nil))
	for _, row := range v.rows {
		tw.AppendRow(v.fit(row))
	}
	if len(v.footer) > 0 {
		tw.AppendFooter(v.fit(v.footer))
	}

	configs := make([]table.ColumnConfig, len(v.columns))
	for i, c := range v.columns {
		align := text.AlignLeft
		if c.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// fit pads or truncates cells to the column count. A nil slice yields the header.
func (v view) fit(cells []string) table.Row {
	r := make(table.Row, len(v.columns))
	for i, c := range v.columns {
		switch {
		case cells == nil:
			r[i] = c.name
		case i < len(cells):
			r[i] = cells[i]
		default:
			r[i] = ""
		}
	}
	return r
}
