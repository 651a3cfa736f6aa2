package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"budgetzero/internal/core"
)

// BalanceCalculator maintains the chain of per-month ending-balance
// snapshots. Snapshots never self-heal: a mutation must invalidate from its
// month forward, after which reads lazily rebuild the chain.
type BalanceCalculator struct {
	entries   EntryStore
	snapshots SnapshotStore
}

func NewBalanceCalculator(entries EntryStore, snapshots SnapshotStore) *BalanceCalculator {
	return &BalanceCalculator{
		entries:   entries,
		snapshots: snapshots,
	}
}

// BalanceUpTo returns the balance accumulated from all paid entries in all
// months strictly before (month, year). It answers from the previous month's
// snapshot when cached; otherwise it walks forward from the earliest stored
// month, caching an ending balance for every month it passes so the chain has
// no gaps.
func (c *BalanceCalculator) BalanceUpTo(ctx context.Context, month, year int) (core.Money, error) {
	if month < 1 || month > 12 {
		return core.Money{}, core.ErrInvalidMonth
	}

	prevMonth, prevYear := core.PrevMonth(month, year)
	if cached, ok, err := c.snapshots.GetSnapshot(ctx, prevMonth, prevYear); err != nil {
		return core.Money{}, fmt.Errorf("read snapshot %d/%d: %w", prevMonth, prevYear, err)
	} else if ok {
		return cached, nil
	}

	startMonth, startYear, ok, err := c.entries.EarliestEntryMonth(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("find earliest entry: %w", err)
	}
	if !ok {
		// Empty store: nothing has ever happened.
		return core.Money{}, nil
	}

	target := core.YearMonth(month, year)
	if target < core.YearMonth(startMonth, startYear) {
		// Before the first recorded entry, the balance is zero.
		return core.Money{}, nil
	}

	slog.DebugContext(ctx, "Rebuilding balance chain",
		"from_month", startMonth, "from_year", startYear,
		"to_month", month, "to_year", year)

	var balance core.Money
	curMonth, curYear := startMonth, startYear
	for core.YearMonth(curMonth, curYear) < target {
		if cached, ok, err := c.snapshots.GetSnapshot(ctx, curMonth, curYear); err != nil {
			return core.Money{}, fmt.Errorf("read snapshot %d/%d: %w", curMonth, curYear, err)
		} else if ok {
			balance = cached
			curMonth, curYear = core.NextMonth(curMonth, curYear)
			continue
		}

		entries, err := c.entries.ListEntriesForMonth(ctx, curMonth, curYear)
		if err != nil {
			return core.Money{}, fmt.Errorf("list entries for %d/%d: %w", curMonth, curYear, err)
		}
		balance = foldPaid(balance, entries)

		// A month with no paid entries still gets a snapshot so the chain
		// stays gapless.
		if err := c.snapshots.PutSnapshot(ctx, curMonth, curYear, balance); err != nil {
			return core.Money{}, fmt.Errorf("cache snapshot %d/%d: %w", curMonth, curYear, err)
		}

		curMonth, curYear = core.NextMonth(curMonth, curYear)
	}

	return balance, nil
}

// RecalculateAndCache recomputes and stores the ending-balance snapshot for
// exactly one month. Callers must invoke it after any mutation that touches
// the month's paid-entry set, after invalidating forward from that month.
func (c *BalanceCalculator) RecalculateAndCache(ctx context.Context, month, year int) (core.Money, error) {
	opening, err := c.BalanceUpTo(ctx, month, year)
	if err != nil {
		return core.Money{}, err
	}

	entries, err := c.entries.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return core.Money{}, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}

	ending := foldPaid(opening, entries)
	if err := c.snapshots.PutSnapshot(ctx, month, year, ending); err != nil {
		return core.Money{}, fmt.Errorf("cache snapshot %d/%d: %w", month, year, err)
	}

	slog.DebugContext(ctx, "Cached month ending balance",
		"month", month, "year", year, "balance_cents", ending.Cents)
	return ending, nil
}

// InvalidateFrom deletes the cached snapshot for (month, year) and every
// later month, forcing re-derivation on the next read. Invalidating a range
// with no snapshots is a no-op.
func (c *BalanceCalculator) InvalidateFrom(ctx context.Context, month, year int) error {
	if err := c.snapshots.DeleteSnapshotsFrom(ctx, month, year); err != nil {
		return fmt.Errorf("invalidate snapshots from %d/%d: %w", month, year, err)
	}
	return nil
}

// CurrentBalance is the balance as of now: everything before the current
// month plus the current month's paid entries.
func (c *BalanceCalculator) CurrentBalance(ctx context.Context, now time.Time) (core.Money, error) {
	month, year := int(now.Month()), now.Year()

	balance, err := c.BalanceUpTo(ctx, month, year)
	if err != nil {
		return core.Money{}, err
	}

	entries, err := c.entries.ListEntriesForMonth(ctx, month, year)
	if err != nil {
		return core.Money{}, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}
	return foldPaid(balance, entries), nil
}

// foldPaid applies a month's paid entries to an opening balance: income adds,
// expense subtracts. Unpaid entries never enter a balance. Entries fold in
// payment order (due date when a payment date is missing), insertion as the
// stable tie-break.
func foldPaid(opening core.Money, entries []core.Entry) core.Money {
	paid := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsPaid {
			paid = append(paid, e)
		}
	}
	sort.SliceStable(paid, func(i, j int) bool {
		ti, tj := paymentOrder(paid[i]), paymentOrder(paid[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		if !paid[i].CreatedAt.Equal(paid[j].CreatedAt) {
			return paid[i].CreatedAt.Before(paid[j].CreatedAt)
		}
		return paid[i].ID.String() < paid[j].ID.String()
	})

	balance := opening
	for _, e := range paid {
		balance = balance.Add(e.Amount.Signed(e.IsIncome))
	}
	return balance
}

func paymentOrder(e core.Entry) time.Time {
	if !e.ActualPaymentDate.IsZero() {
		return e.ActualPaymentDate
	}
	return e.DueDate
}
