package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderKeyValues renders two-column rows as a rounded table with the keys
// right-aligned.
func renderKeyValues(rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignLeft},
	})
	return tw.Render()
}
