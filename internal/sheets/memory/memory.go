package memory

import (
	"context"
	"sync"

	"budgetzero/internal/core"
	ports "budgetzero/internal/sheets"
)

// Export is one recorded ExportMonth call.
type Export struct {
	Year    int
	Month   int
	Entries []core.Entry
	Ending  core.Money
}

// Writer records exports in memory. Useful for tests and local runs
// without Google credentials.
type Writer struct {
	mu      sync.Mutex
	exports []Export
}

var _ ports.MonthWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) ExportMonth(_ context.Context, year, month int, entries []core.Entry, ending core.Money) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	copied := make([]core.Entry, len(entries))
	copy(copied, entries)
	w.exports = append(w.exports, Export{Year: year, Month: month, Entries: copied, Ending: ending})
	return nil
}

// Exports returns a copy of everything recorded so far.
func (w *Writer) Exports() []Export {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Export, len(w.exports))
	copy(out, w.exports)
	return out
}
