// Package services provides business logic and orchestration for the ledger.
//
// This file implements the Strategy Pattern for due-date resolution. Each
// frequency type has its own resolver that maps a template onto the concrete
// due dates falling inside one calendar month.
package services

import (
	"sort"
	"time"

	"budgetzero/internal/core"
)

// DueDateResolver is the strategy interface for one frequency type. DueDates
// returns the dates within (month, year) implied by the template's schedule.
// Implementations are pure: no I/O, no clock access.
type DueDateResolver interface {
	DueDates(t core.Template, month, year int) []time.Time
}

// DayOfMonthResolver handles monthly, bimonthly and yearly templates: one due
// date per calendar month, clamped to the month's true last day. Bimonthly
// deliberately shares this rule; skipping alternate months is a caller-level
// concern.
type DayOfMonthResolver struct{}

func (DayOfMonthResolver) DueDates(t core.Template, month, year int) []time.Time {
	day := t.DueDay
	if last := core.DaysInMonth(month, year); day > last {
		day = last
	}
	return []time.Time{monthDay(month, year, day)}
}

// SemiMonthlyResolver emits two due dates per month from the template's day
// pair, sorted.
type SemiMonthlyResolver struct{}

func (SemiMonthlyResolver) DueDates(t core.Template, month, year int) []time.Time {
	last := core.DaysInMonth(month, year)
	d1, d2 := t.SemiDay1, t.SemiDay2
	if d1 > last {
		d1 = last
	}
	if d2 > last {
		d2 = last
	}
	if d2 < d1 {
		d1, d2 = d2, d1
	}
	return []time.Time{monthDay(month, year, d1), monthDay(month, year, d2)}
}

// WeeklyResolver emits every date in the month that shares the anchor date's
// weekday.
type WeeklyResolver struct{}

func (WeeklyResolver) DueDates(t core.Template, month, year int) []time.Time {
	anchorWeekday := dayOf(t.StartDate).Weekday()
	first := monthDay(month, year, 1)
	daysToAdd := (int(anchorWeekday) - int(first.Weekday()) + 7) % 7

	var dates []time.Time
	for d := first.AddDate(0, 0, daysToAdd); int(d.Month()) == month; d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

// BiweeklyResolver emits every date in the month that is a whole multiple of
// 14 days from the anchor, stepping forward or backward from the anchor as
// needed to reach the month's window.
type BiweeklyResolver struct{}

func (BiweeklyResolver) DueDates(t core.Template, month, year int) []time.Time {
	anchor := dayOf(t.StartDate)
	monthStart := monthDay(month, year, 1)
	nextMonthStart := monthStart.AddDate(0, 1, 0)

	// Smallest multiple of 14 days from the anchor that lands on or after
	// the start of the month. Both times are UTC midnights, so the hour
	// arithmetic is exact.
	daysToStart := int(monthStart.Sub(anchor).Hours() / 24)
	steps := daysToStart / 14
	if daysToStart%14 > 0 {
		steps++
	}

	var dates []time.Time
	for d := anchor.AddDate(0, 0, steps*14); d.Before(nextMonthStart); d = d.AddDate(0, 0, 14) {
		dates = append(dates, d)
	}
	return dates
}

// NoRecurrenceResolver covers one-time and custom-days templates, which never
// generate dates from the resolver.
type NoRecurrenceResolver struct{}

func (NoRecurrenceResolver) DueDates(core.Template, int, int) []time.Time {
	return nil
}

// dueDateStrategies maps frequency types to their resolvers.
var dueDateStrategies = map[core.Frequency]DueDateResolver{
	core.Monthly:     DayOfMonthResolver{},
	core.Bimonthly:   DayOfMonthResolver{},
	core.Yearly:      DayOfMonthResolver{},
	core.SemiMonthly: SemiMonthlyResolver{},
	core.Weekly:      WeeklyResolver{},
	core.Biweekly:    BiweeklyResolver{},
	core.OneTime:     NoRecurrenceResolver{},
	core.CustomDays:  NoRecurrenceResolver{},
}

// ResolveDueDates returns the ordered, deduplicated due dates for a template
// within one calendar month. Templates with a missing or out-of-range
// schedule, or an unknown frequency, resolve to an empty list: there is
// nothing to generate, never an error.
func ResolveDueDates(t core.Template, month, year int) []time.Time {
	if month < 1 || month > 12 || year < 1 {
		return nil
	}
	if err := t.ValidateSchedule(); err != nil {
		return nil
	}
	resolver, ok := dueDateStrategies[t.Frequency]
	if !ok {
		return nil
	}

	dates := resolver.DueDates(t, month, year)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	deduped := dates[:0]
	for _, d := range dates {
		if len(deduped) == 0 || !d.Equal(deduped[len(deduped)-1]) {
			deduped = append(deduped, d)
		}
	}
	return deduped
}

func monthDay(month, year, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// dayOf truncates a timestamp to its UTC calendar day.
func dayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
