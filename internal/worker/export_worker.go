package worker

import (
	"context"
	"fmt"
	"log/slog"

	"budgetzero/internal/amqp"
	"budgetzero/internal/core"
	"budgetzero/internal/sheets"
	"budgetzero/internal/storage"
)

// ExportWorker mirrors ledger months from SQLite to an external sheet.
// It reacts to ledger-changed messages from AMQP.
type ExportWorker struct {
	storage *storage.SQLiteStore
	writer  sheets.MonthWriter
}

func NewExportWorker(storage *storage.SQLiteStore, writer sheets.MonthWriter) *ExportWorker {
	return &ExportWorker{
		storage: storage,
		writer:  writer,
	}
}

// HandleLedgerChanged processes a single ledger-changed message: it loads the
// month's entries fresh from storage and exports them together with the
// ending balance carried on the message.
func (w *ExportWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"month", msg.Month,
		"year", msg.Year,
		"ending_balance_cents", msg.EndingBalanceCents)

	entries, err := w.storage.ListEntriesForMonth(ctx, msg.Month, msg.Year)
	if err != nil {
		return fmt.Errorf("list entries for month: %w", err)
	}

	ending := core.Money{Cents: msg.EndingBalanceCents}
	if err := w.writer.ExportMonth(ctx, msg.Year, msg.Month, entries, ending); err != nil {
		return fmt.Errorf("export month: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported month",
		"month", msg.Month,
		"year", msg.Year,
		"entries", len(entries))
	return nil
}
