package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetzero/internal/core"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testTemplate() core.Template {
	return core.Template{
		ID:        uuid.New(),
		Title:     "Rent",
		Amount:    core.Money{Cents: 120000},
		Frequency: core.Monthly,
		Category:  core.CategoryHousing,
		Notes:     "due first of month",
		CreatedAt: time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		DueDay:    1,
	}
}

func testEntry(templateID *uuid.UUID, month, year int) core.Entry {
	return core.Entry{
		ID:         uuid.New(),
		TemplateID: templateID,
		Month:      month,
		Year:       year,
		Title:      "Rent",
		Amount:     core.Money{Cents: 120000},
		DueDate:    time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC),
		Category:   core.CategoryHousing,
		CreatedAt:  time.Date(year, time.Month(month), 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestTemplateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.InsertTemplate(ctx, tmpl))

	got, err := store.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, got.ID)
	assert.Equal(t, tmpl.Title, got.Title)
	assert.Equal(t, tmpl.Amount, got.Amount)
	assert.Equal(t, tmpl.Frequency, got.Frequency)
	assert.Equal(t, tmpl.DueDay, got.DueDay)
	assert.Equal(t, tmpl.Notes, got.Notes)
	assert.True(t, tmpl.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.StartDate.IsZero(), "unset start date survives as zero")

	tmpl.Title = "Rent (renewed)"
	tmpl.Amount = core.Money{Cents: 130000}
	require.NoError(t, store.UpdateTemplate(ctx, tmpl))
	got, err = store.GetTemplate(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rent (renewed)", got.Title)

	require.NoError(t, store.DeleteTemplate(ctx, tmpl.ID))
	_, err = store.GetTemplate(ctx, tmpl.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestTemplateOptionalScheduleFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	weekly := testTemplate()
	weekly.Frequency = core.Weekly
	weekly.DueDay = 0
	weekly.StartDate = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertTemplate(ctx, weekly))

	semi := testTemplate()
	semi.ID = uuid.New()
	semi.Frequency = core.SemiMonthly
	semi.DueDay = 0
	semi.SemiDay1, semi.SemiDay2 = 1, 15
	require.NoError(t, store.InsertTemplate(ctx, semi))

	gotWeekly, err := store.GetTemplate(ctx, weekly.ID)
	require.NoError(t, err)
	assert.True(t, weekly.StartDate.Equal(gotWeekly.StartDate))
	assert.Zero(t, gotWeekly.SemiDay1)

	gotSemi, err := store.GetTemplate(ctx, semi.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotSemi.SemiDay1)
	assert.Equal(t, 15, gotSemi.SemiDay2)
	assert.True(t, gotSemi.StartDate.IsZero())
}

func TestUpdateMissingTemplateReturnsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateTemplate(context.Background(), testTemplate())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEntryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.InsertTemplate(ctx, tmpl))

	e := testEntry(&tmpl.ID, 3, 2024)
	require.NoError(t, store.InsertEntry(ctx, e))

	got, err := store.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TemplateID)
	assert.Equal(t, tmpl.ID, *got.TemplateID)
	assert.True(t, e.DueDate.Equal(got.DueDate))
	assert.False(t, got.IsPaid)
	assert.True(t, got.ActualPaymentDate.IsZero())

	got.IsPaid = true
	got.ActualPaymentDate = time.Date(2024, 3, 2, 17, 30, 0, 0, time.UTC)
	require.NoError(t, store.UpdateEntry(ctx, got))

	paid, err := store.GetEntry(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.True(t, got.ActualPaymentDate.Equal(paid.ActualPaymentDate))

	require.NoError(t, store.DeleteEntry(ctx, e.ID))
	_, err = store.GetEntry(ctx, e.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestListEntriesForMonthOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	paidLate := testEntry(nil, 3, 2024)
	paidLate.Title = "Paid late"
	paidLate.IsPaid = true
	paidLate.ActualPaymentDate = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	paidLate.DisplayOrder = 0

	paidEarly := testEntry(nil, 3, 2024)
	paidEarly.Title = "Paid early"
	paidEarly.IsPaid = true
	paidEarly.ActualPaymentDate = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	paidEarly.DisplayOrder = 5

	unpaidFirst := testEntry(nil, 3, 2024)
	unpaidFirst.Title = "Unpaid first"
	unpaidFirst.DisplayOrder = 0

	unpaidSecond := testEntry(nil, 3, 2024)
	unpaidSecond.Title = "Unpaid second"
	unpaidSecond.DisplayOrder = 1

	for _, e := range []core.Entry{unpaidSecond, paidLate, unpaidFirst, paidEarly} {
		require.NoError(t, store.InsertEntry(ctx, e))
	}

	entries, err := store.ListEntriesForMonth(ctx, 3, 2024)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}
	assert.Equal(t, []string{"Paid early", "Paid late", "Unpaid first", "Unpaid second"}, titles)
}

func TestDeleteEntriesForTemplateFrom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	tmpl := testTemplate()
	require.NoError(t, store.InsertTemplate(ctx, tmpl))
	other := testTemplate()
	other.ID = uuid.New()
	require.NoError(t, store.InsertTemplate(ctx, other))

	// December 2023 through February 2024 for the target template, plus an
	// unrelated February entry.
	require.NoError(t, store.InsertEntry(ctx, testEntry(&tmpl.ID, 12, 2023)))
	require.NoError(t, store.InsertEntry(ctx, testEntry(&tmpl.ID, 1, 2024)))
	require.NoError(t, store.InsertEntry(ctx, testEntry(&tmpl.ID, 2, 2024)))
	require.NoError(t, store.InsertEntry(ctx, testEntry(&other.ID, 2, 2024)))

	require.NoError(t, store.DeleteEntriesForTemplateFrom(ctx, tmpl.ID, 1, 2024))

	dec, err := store.ListEntriesForMonth(ctx, 12, 2023)
	require.NoError(t, err)
	assert.Len(t, dec, 1, "earlier months keep their entries")

	jan, err := store.ListEntriesForMonth(ctx, 1, 2024)
	require.NoError(t, err)
	assert.Empty(t, jan)

	feb, err := store.ListEntriesForMonth(ctx, 2, 2024)
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, other.ID, *feb[0].TemplateID)
}

func TestEarliestEntryMonth(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, _, ok, err := store.EarliestEntryMonth(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.InsertEntry(ctx, testEntry(nil, 2, 2024)))
	require.NoError(t, store.InsertEntry(ctx, testEntry(nil, 11, 2023)))

	month, year, ok, err := store.EarliestEntryMonth(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, month)
	assert.Equal(t, 2023, year)
}

func TestSnapshotRoundTripAndYearWrap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, ok, err := store.GetSnapshot(ctx, 1, 2024)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.PutSnapshot(ctx, 11, 2023, core.Money{Cents: 100}))
	require.NoError(t, store.PutSnapshot(ctx, 12, 2023, core.Money{Cents: 200}))
	require.NoError(t, store.PutSnapshot(ctx, 1, 2024, core.Money{Cents: 300}))

	// Upsert replaces.
	require.NoError(t, store.PutSnapshot(ctx, 11, 2023, core.Money{Cents: 150}))
	got, ok, err := store.GetSnapshot(ctx, 11, 2023)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(150), got.Cents)

	// Invalidating from December 2023 crosses the year boundary into 2024.
	require.NoError(t, store.DeleteSnapshotsFrom(ctx, 12, 2023))

	_, ok, err = store.GetSnapshot(ctx, 11, 2023)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = store.GetSnapshot(ctx, 12, 2023)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = store.GetSnapshot(ctx, 1, 2024)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetSetting(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, store.PutSetting(ctx, "last_materialized_month", "24291"))
	got, err := store.GetSetting(ctx, "last_materialized_month")
	require.NoError(t, err)
	assert.Equal(t, "24291", got)

	require.NoError(t, store.PutSetting(ctx, "last_materialized_month", "24292"))
	got, err = store.GetSetting(ctx, "last_materialized_month")
	require.NoError(t, err)
	assert.Equal(t, "24292", got)
}
