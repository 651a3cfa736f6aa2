package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OneTime     Frequency = "one_time"
	Weekly      Frequency = "weekly"
	Biweekly    Frequency = "biweekly"
	Monthly     Frequency = "monthly"
	Bimonthly   Frequency = "bimonthly"
	SemiMonthly Frequency = "semi_monthly"
	CustomDays  Frequency = "custom_days"
	Yearly      Frequency = "yearly"
)

const (
	CategoryHousing        Category = "housing"
	CategoryUtilities      Category = "utilities"
	CategoryTransportation Category = "transportation"
	CategoryInsurance      Category = "insurance"
	CategoryFood           Category = "food"
	CategoryEntertainment  Category = "entertainment"
	CategoryHealthcare     Category = "healthcare"
	CategoryDebt           Category = "debt"
	CategorySavings        Category = "savings"
	CategoryIncome         Category = "income"
	CategoryOther          Category = "other"
)

type (
	// Frequency describes how a template recurs across months.
	Frequency string

	// Category is a user-facing grouping label for templates and entries.
	Category string

	// Template is a recurring (or one-time) cash-flow definition. The
	// schedule fields are mutually exclusive by frequency: DueDay for
	// monthly/bimonthly/yearly, StartDate for weekly/biweekly, and the
	// SemiDay pair for semi-monthly. Zero values mean "not set".
	Template struct {
		ID        uuid.UUID
		Title     string
		Amount    Money
		IsIncome  bool
		Frequency Frequency
		Category  Category
		Notes     string
		CreatedAt time.Time

		DueDay    int       // 1-31
		StartDate time.Time // anchors weekday and biweekly parity
		SemiDay1  int       // 1-28
		SemiDay2  int       // 1-28
	}

	// Entry is a single dated, payable record for one month. It is either
	// materialized from a template (TemplateID set) or entered directly as a
	// one-time cash flow. Title, amount, category and notes are denormalized
	// copies taken from the template at generation time.
	Entry struct {
		ID                uuid.UUID
		TemplateID        *uuid.UUID
		Month             int // 1-12
		Year              int
		Title             string
		Amount            Money
		IsIncome          bool
		IsPaid            bool
		DueDate           time.Time
		ActualPaymentDate time.Time // zero while unpaid
		DisplayOrder      int
		Category          Category
		Notes             string
		CreatedAt         time.Time
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidSchedule  = errors.New("invalid schedule for frequency")
	ErrEmptyTitle       = errors.New("empty title")
	ErrNotFound         = errors.New("not found")
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case OneTime, Weekly, Biweekly, Monthly, Bimonthly, SemiMonthly, CustomDays, Yearly:
		return true
	}
	return false
}

func (t Template) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return t.ValidateSchedule()
}

// ValidateSchedule checks the frequency-specific scheduling fields. The
// semi-monthly days are capped at 28 so the pair is unambiguous in every
// month.
func (t Template) ValidateSchedule() error {
	switch t.Frequency {
	case Monthly, Bimonthly, Yearly:
		if t.DueDay < 1 || t.DueDay > 31 {
			return ErrInvalidSchedule
		}
	case Weekly, Biweekly:
		if t.StartDate.IsZero() {
			return ErrInvalidSchedule
		}
	case SemiMonthly:
		if t.SemiDay1 < 1 || t.SemiDay1 > 28 || t.SemiDay2 < 1 || t.SemiDay2 > 28 {
			return ErrInvalidSchedule
		}
	case OneTime, CustomDays:
		// No recurrence data; the resolver never produces dates for these.
	default:
		return ErrInvalidFrequency
	}
	return nil
}

func (e Entry) Validate() error {
	if e.Month < 1 || e.Month > 12 {
		return ErrInvalidMonth
	}
	if e.Year < 1 {
		return errors.New("invalid year")
	}
	if len(strings.TrimSpace(e.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(e.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.DueDate.IsZero() {
		return errors.New("due date cannot be zero")
	}
	return nil
}

// YearMonth collapses a month/year pair into a single comparable ordinal.
func YearMonth(month, year int) int {
	return year*12 + month
}

// PrevMonth returns the month immediately before the given one, wrapping
// January back into December of the previous year.
func PrevMonth(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}

// NextMonth returns the month immediately after the given one.
func NextMonth(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// DaysInMonth returns the true day count for a month, leap years included.
func DaysInMonth(month, year int) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
