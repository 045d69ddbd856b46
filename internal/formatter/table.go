package formatter

import (
	"fmt"

	"github.com/desertthunder/popcorn/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// SearchTable renders search results as a rounded table.
func SearchTable(results []models.SearchResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.ID, r.Title, r.Year})
	}
	return renderTable([]string{"ID", "Title", "Year"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}

// WatchedTable renders the watched list with a summary footer.
func WatchedTable(list models.WatchedList) string {
	rows := make([][]string, 0, len(list))
	for _, e := range list {
		rows = append(rows, []string{
			e.ID,
			e.Title,
			e.Year,
			fmt.Sprintf("%.1f", e.ExternalRating),
			fmt.Sprintf("%d", e.UserRating),
			FormatRuntime(e.RuntimeMinutes),
		})
	}

	s := list.Summary()
	footer := []string{
		"",
		fmt.Sprintf("%d movies", s.Count),
		"",
		fmt.Sprintf("%.2f", s.AvgExternalRating),
		fmt.Sprintf("%.2f", s.AvgUserRating),
		fmt.Sprintf("%.2f min", s.AvgRuntime),
	}

	headers := []string{"ID", "Title", "Year", "IMDb", "Yours", "Runtime"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	return renderTableWithFooter(headers, rows, footer, aligns)
}

// Table renders rows under headers with every column left aligned.
func Table(headers []string, rows [][]string) string {
	return renderTableWithFooter(headers, rows, nil, nil)
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableWithFooter(headers, rows, nil, aligns)
}

func renderTableWithFooter(headers []string, rows [][]string, footer []string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(toRow(headers, columns))

	for _, row := range rows {
		tw.AppendRow(toRow(row, columns))
	}
	if footer != nil {
		tw.AppendFooter(toRow(footer, columns))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func toRow(cells []string, columns int) table.Row {
	r := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}
