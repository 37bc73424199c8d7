// Package export renders the record set as the downloadable CSV report.
//
// Notes are left out and fields are joined with commas without quoting, so a
// name containing a comma spills into the next column.
package export

import (
	"io"
	"strings"

	"expensetracker/internal/core"
)

const (
	Filename    = "expenses.csv"
	ContentType = "text/csv;charset=utf-8"
)

var Header = []string{"Name", "Amount", "Category"}

// Rows returns the header followed by one row per record in display order.
func Rows(records []core.Expense) [][]string {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, Header)
	for _, e := range records {
		rows = append(rows, []string{e.Name, e.Amount.String(), e.Category.String()})
	}
	return rows
}

// ToCSV joins Rows with commas and newlines; there is no trailing newline.
func ToCSV(records []core.Expense) string {
	rows := Rows(records)
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = strings.Join(r, ",")
	}
	return strings.Join(lines, "\n")
}

// WriteCSV writes ToCSV(records) to w.
func WriteCSV(w io.Writer, records []core.Expense) error {
	_, err := io.WriteString(w, ToCSV(records))
	return err
}
