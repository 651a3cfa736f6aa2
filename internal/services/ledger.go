package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"budgetzero/internal/amqp"
	"budgetzero/internal/core"
)

// LedgerService orchestrates template and entry mutations. Every mutation
// invalidates cached balances from its month forward, recomputes that month's
// snapshot, and returns the updated aggregate so the caller can refresh
// deterministically. Change events are additionally published to AMQP when a
// client is configured; publishing is best-effort and never fails the
// mutation.
type LedgerService struct {
	store     Store
	months    *MonthMaterializer
	balances  *BalanceCalculator
	publisher *amqp.Client
	now       func() time.Time
}

func NewLedgerService(store Store, publisher *amqp.Client) *LedgerService {
	return &LedgerService{
		store:     store,
		months:    NewMonthMaterializer(store, store),
		balances:  NewBalanceCalculator(store, store),
		publisher: publisher,
		now:       time.Now,
	}
}

// Balances exposes the calculator for read-only balance queries.
func (s *LedgerService) Balances() *BalanceCalculator {
	return s.balances
}

// LoadMonth materializes any missing template entries for the month and
// returns its full entry set.
func (s *LedgerService) LoadMonth(ctx context.Context, month, year int) ([]core.Entry, error) {
	return s.months.EnsureMonth(ctx, month, year)
}

// Templates lists all templates.
func (s *LedgerService) Templates(ctx context.Context) ([]core.Template, error) {
	return s.store.ListTemplates(ctx)
}

// AddTemplate persists a new template and immediately materializes its due
// dates into the month the caller is viewing, appended after the month's
// existing entries.
func (s *LedgerService) AddTemplate(ctx context.Context, t core.Template, viewMonth, viewYear int) ([]core.Entry, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}

	if err := s.store.InsertTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("add template: %w", err)
	}

	existing, err := s.store.ListEntriesForMonth(ctx, viewMonth, viewYear)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", viewMonth, viewYear, err)
	}

	templateID := t.ID
	for i, due := range ResolveDueDates(t, viewMonth, viewYear) {
		entry := core.Entry{
			ID:           uuid.New(),
			TemplateID:   &templateID,
			Month:        viewMonth,
			Year:         viewYear,
			Title:        t.Title,
			Amount:       t.Amount,
			IsIncome:     t.IsIncome,
			DueDate:      due,
			DisplayOrder: len(existing) + i,
			Category:     t.Category,
			Notes:        t.Notes,
			CreatedAt:    s.now(),
		}
		if err := s.store.InsertEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("materialize new template: %w", err)
		}
	}

	slog.InfoContext(ctx, "Template added",
		"template_id", t.ID, "title", t.Title, "frequency", t.Frequency)

	return s.refreshMonth(ctx, viewMonth, viewYear)
}

// UpdateTemplate updates the template and re-syncs its denormalized fields
// onto the viewing month's entries. Entries in other months keep the values
// they were generated with unless the caller re-syncs them too.
func (s *LedgerService) UpdateTemplate(ctx context.Context, t core.Template, viewMonth, viewYear int) ([]core.Entry, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}
	if err := s.store.UpdateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}

	entries, err := s.store.ListEntriesForMonth(ctx, viewMonth, viewYear)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", viewMonth, viewYear, err)
	}
	for _, e := range entries {
		if e.TemplateID == nil || *e.TemplateID != t.ID {
			continue
		}
		e.Title = t.Title
		e.Amount = t.Amount
		e.Category = t.Category
		e.Notes = t.Notes
		if err := s.store.UpdateEntry(ctx, e); err != nil {
			return nil, fmt.Errorf("re-sync entry %s: %w", e.ID, err)
		}
	}

	return s.refreshMonth(ctx, viewMonth, viewYear)
}

// DeleteTemplate removes the template and its materialized entries for the
// viewing month and every later month; strictly past months keep their
// entries as history.
func (s *LedgerService) DeleteTemplate(ctx context.Context, id uuid.UUID, viewMonth, viewYear int) ([]core.Entry, error) {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return nil, fmt.Errorf("delete template: %w", err)
	}
	if err := s.store.DeleteEntriesForTemplateFrom(ctx, id, viewMonth, viewYear); err != nil {
		return nil, fmt.Errorf("delete template entries: %w", err)
	}

	slog.InfoContext(ctx, "Template deleted",
		"template_id", id, "from_month", viewMonth, "from_year", viewYear)

	return s.refreshMonth(ctx, viewMonth, viewYear)
}

// AddOneTime records a standalone dated entry with no backing template.
func (s *LedgerService) AddOneTime(ctx context.Context, e core.Entry) ([]core.Entry, error) {
	e.TemplateID = nil
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate entry: %w", err)
	}

	existing, err := s.store.ListEntriesForMonth(ctx, e.Month, e.Year)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", e.Month, e.Year, err)
	}
	e.DisplayOrder = len(existing)

	if err := s.store.InsertEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("add one-time entry: %w", err)
	}

	return s.refreshMonth(ctx, e.Month, e.Year)
}

// UpdateEntry persists an edited entry and refreshes its month's balance.
func (s *LedgerService) UpdateEntry(ctx context.Context, e core.Entry) ([]core.Entry, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate entry: %w", err)
	}
	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	return s.refreshMonth(ctx, e.Month, e.Year)
}

// DeleteEntry removes one dated entry.
func (s *LedgerService) DeleteEntry(ctx context.Context, id uuid.UUID) ([]core.Entry, error) {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load entry: %w", err)
	}
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return nil, fmt.Errorf("delete entry: %w", err)
	}
	return s.refreshMonth(ctx, e.Month, e.Year)
}

// SetPaid flips an entry's paid state. Marking paid stamps the actual payment
// date with the current time; marking unpaid clears it. Both directions
// invalidate and recompute the month's balance.
func (s *LedgerService) SetPaid(ctx context.Context, id uuid.UUID, paid bool) (core.Entry, error) {
	e, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("load entry: %w", err)
	}
	if e.IsPaid == paid {
		return e, nil
	}

	e.IsPaid = paid
	if paid {
		e.ActualPaymentDate = s.now()
	} else {
		e.ActualPaymentDate = time.Time{}
	}

	if err := s.store.UpdateEntry(ctx, e); err != nil {
		return core.Entry{}, fmt.Errorf("update entry: %w", err)
	}
	if _, err := s.refreshMonth(ctx, e.Month, e.Year); err != nil {
		return core.Entry{}, err
	}

	slog.InfoContext(ctx, "Entry paid state changed",
		"entry_id", e.ID, "title", e.Title, "is_paid", paid)
	return e, nil
}

// ReorderUnpaid reassigns display order across a month's unpaid entries to
// match orderedIDs. Paid entries hold their position by payment date and are
// not reorderable. Ordering never affects balances, so no invalidation runs.
func (s *LedgerService) ReorderUnpaid(ctx context.Context, month, year int, orderedIDs []uuid.UUID) ([]core.Entry, error) {
	entries, err := s.store.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}

	unpaid := make(map[uuid.UUID]core.Entry)
	for _, e := range entries {
		if !e.IsPaid {
			unpaid[e.ID] = e
		}
	}
	if len(orderedIDs) != len(unpaid) {
		return nil, fmt.Errorf("reorder covers %d entries, month has %d unpaid", len(orderedIDs), len(unpaid))
	}

	for i, id := range orderedIDs {
		e, ok := unpaid[id]
		if !ok {
			return nil, fmt.Errorf("entry %s is not an unpaid entry of %d/%d", id, month, year)
		}
		if e.DisplayOrder == i {
			continue
		}
		e.DisplayOrder = i
		if err := s.store.UpdateEntry(ctx, e); err != nil {
			return nil, fmt.Errorf("reorder entry %s: %w", id, err)
		}
	}

	return s.store.ListEntriesForMonth(ctx, month, year)
}

// MonthTotals sums a month's income and expense entries regardless of paid
// state.
func (s *LedgerService) MonthTotals(ctx context.Context, month, year int) (core.MonthTotals, error) {
	entries, err := s.store.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return core.MonthTotals{}, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}

	totals := core.MonthTotals{Year: year, Month: month}
	for _, e := range entries {
		if e.IsIncome {
			totals.Income = totals.Income.Add(e.Amount)
		} else {
			totals.Expenses = totals.Expenses.Add(e.Amount)
		}
	}
	totals.Net = totals.Income.Sub(totals.Expenses)
	return totals, nil
}

// Upcoming returns the unpaid entries of now's month due within the next
// `days` days, soonest first.
func (s *LedgerService) Upcoming(ctx context.Context, now time.Time, days int) ([]core.Entry, error) {
	entries, err := s.store.ListEntriesForMonth(ctx, int(now.Month()), now.Year())
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", int(now.Month()), now.Year(), err)
	}

	today := dayOf(now)
	horizon := today.AddDate(0, 0, days)

	var upcoming []core.Entry
	for _, e := range entries {
		if e.IsPaid || e.DueDate.Before(today) || e.DueDate.After(horizon) {
			continue
		}
		upcoming = append(upcoming, e)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DueDate.Before(upcoming[j].DueDate)
	})
	return upcoming, nil
}

// refreshMonth runs the invalidate-then-recompute contract for a mutated
// month, publishes the change, and returns the month's updated entry set.
func (s *LedgerService) refreshMonth(ctx context.Context, month, year int) ([]core.Entry, error) {
	if err := s.balances.InvalidateFrom(ctx, month, year); err != nil {
		return nil, err
	}
	balance, err := s.balances.RecalculateAndCache(ctx, month, year)
	if err != nil {
		return nil, err
	}

	s.publishChange(ctx, month, year, balance)

	return s.store.ListEntriesForMonth(ctx, month, year)
}

func (s *LedgerService) publishChange(ctx context.Context, month, year int, balance core.Money) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, month, year, balance.Cents); err != nil {
		// The mutation already committed; a lost event only delays
		// downstream consumers until the next change.
		slog.ErrorContext(ctx, "Failed to publish ledger change",
			"month", month, "year", year, "error", err)
	}
}
