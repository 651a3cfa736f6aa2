package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetzero/internal/core"
)

func TestWriterRecordsExports(t *testing.T) {
	w := NewWriter()
	ctx := context.Background()

	entries := []core.Entry{{
		ID:      uuid.New(),
		Month:   3,
		Year:    2024,
		Title:   "Rent",
		Amount:  core.Money{Cents: 120000},
		DueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}}

	require.NoError(t, w.ExportMonth(ctx, 2024, 3, entries, core.Money{Cents: -120000}))
	require.NoError(t, w.ExportMonth(ctx, 2024, 4, nil, core.Money{Cents: -120000}))

	exports := w.Exports()
	require.Len(t, exports, 2)
	assert.Equal(t, 3, exports[0].Month)
	assert.Equal(t, "Rent", exports[0].Entries[0].Title)
	assert.Equal(t, int64(-120000), exports[0].Ending.Cents)
	assert.Empty(t, exports[1].Entries)

	// Mutating the caller's slice after the fact does not leak into the
	// recorded export.
	entries[0].Title = "changed"
	assert.Equal(t, "Rent", w.Exports()[0].Entries[0].Title)
}
