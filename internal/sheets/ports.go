package sheets

import (
	"context"

	"expensetracker/internal/core"
)

// Exporter publishes the export table to a spreadsheet.
type Exporter interface {
	// Export replaces the sheet contents with records and returns the written range.
	Export(ctx context.Context, records []core.Expense) (ref string, err error)
}
