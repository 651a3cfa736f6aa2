package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgetzero/internal/core"
)

// MonthMaterializer turns templates into dated entries for a requested month.
// Presence of any entry carrying a template's id in that month is the
// idempotency guard: a template is materialized at most once per month.
type MonthMaterializer struct {
	templates TemplateStore
	entries   EntryStore
	now       func() time.Time
}

func NewMonthMaterializer(templates TemplateStore, entries EntryStore) *MonthMaterializer {
	return &MonthMaterializer{
		templates: templates,
		entries:   entries,
		now:       time.Now,
	}
}

// EnsureMonth materializes every template that has no entries yet for
// (month, year) and returns the month's full entry set. A persistence failure
// for one template is logged and that template skipped; the remaining
// templates still materialize. Existing entries, paid or unpaid, are never
// touched.
func (m *MonthMaterializer) EnsureMonth(ctx context.Context, month, year int) ([]core.Entry, error) {
	if month < 1 || month > 12 {
		return nil, core.ErrInvalidMonth
	}

	templates, err := m.templates.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	existing, err := m.entries.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}

	materialized := make(map[uuid.UUID]bool, len(existing))
	for _, e := range existing {
		if e.TemplateID != nil {
			materialized[*e.TemplateID] = true
		}
	}

	generated := 0
	for _, t := range templates {
		if materialized[t.ID] {
			continue
		}

		dueDates := ResolveDueDates(t, month, year)
		if len(dueDates) == 0 {
			continue
		}

		if err := m.materializeTemplate(ctx, t, dueDates, month, year); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize template, skipping",
				"template_id", t.ID,
				"title", t.Title,
				"month", month,
				"year", year,
				"error", err)
			continue
		}
		generated += len(dueDates)
	}

	if generated > 0 {
		slog.InfoContext(ctx, "Materialized month",
			"month", month,
			"year", year,
			"entries_generated", generated,
			"templates_total", len(templates))
	}

	entries, err := m.entries.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}
	return entries, nil
}

// materializeTemplate persists one entry per due date, with display order
// following emission order. Each template's entry set is its own unit of
// work; a mid-set failure aborts the rest of this template only.
func (m *MonthMaterializer) materializeTemplate(ctx context.Context, t core.Template, dueDates []time.Time, month, year int) error {
	templateID := t.ID
	for i, due := range dueDates {
		entry := core.Entry{
			ID:           uuid.New(),
			TemplateID:   &templateID,
			Month:        month,
			Year:         year,
			Title:        t.Title,
			Amount:       t.Amount,
			IsIncome:     t.IsIncome,
			IsPaid:       false,
			DueDate:      due,
			DisplayOrder: i,
			Category:     t.Category,
			Notes:        t.Notes,
			CreatedAt:    m.now(),
		}
		if err := m.entries.InsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("insert entry %d of %d: %w", i+1, len(dueDates), err)
		}
	}
	return nil
}
