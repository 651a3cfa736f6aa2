package sheets

import (
	"context"

	"budgetzero/internal/core"
)

// MonthWriter is the outbound port for ledger export: one call writes a
// month's entries plus its ending balance to an external sheet.
type MonthWriter interface {
	ExportMonth(ctx context.Context, year, month int, entries []core.Entry, ending core.Money) error
}
