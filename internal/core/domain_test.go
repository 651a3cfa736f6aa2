package core

import (
	"errors"
	"testing"
	"time"
)

func TestTemplateValidateSchedule(t *testing.T) {
	anchor := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template Template
		wantErr  error
	}{
		{"monthly with due day", Template{Frequency: Monthly, DueDay: 15}, nil},
		{"monthly without due day", Template{Frequency: Monthly}, ErrInvalidSchedule},
		{"monthly due day out of range", Template{Frequency: Monthly, DueDay: 32}, ErrInvalidSchedule},
		{"bimonthly shares monthly rule", Template{Frequency: Bimonthly, DueDay: 1}, nil},
		{"yearly with due day", Template{Frequency: Yearly, DueDay: 31}, nil},
		{"weekly with anchor", Template{Frequency: Weekly, StartDate: anchor}, nil},
		{"weekly without anchor", Template{Frequency: Weekly}, ErrInvalidSchedule},
		{"biweekly without anchor", Template{Frequency: Biweekly}, ErrInvalidSchedule},
		{"semi-monthly valid pair", Template{Frequency: SemiMonthly, SemiDay1: 1, SemiDay2: 15}, nil},
		{"semi-monthly day over 28", Template{Frequency: SemiMonthly, SemiDay1: 1, SemiDay2: 29}, ErrInvalidSchedule},
		{"one-time needs nothing", Template{Frequency: OneTime}, nil},
		{"custom days needs nothing", Template{Frequency: CustomDays}, nil},
		{"unknown frequency", Template{Frequency: "fortnightly"}, ErrInvalidFrequency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.ValidateSchedule()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSchedule() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month, year, want int
	}{
		{1, 2024, 31},
		{2, 2024, 29}, // leap year
		{2, 2025, 28},
		{2, 2100, 28}, // century non-leap
		{4, 2024, 30},
		{12, 2024, 31},
	}
	for _, tt := range tests {
		if got := DaysInMonth(tt.month, tt.year); got != tt.want {
			t.Errorf("DaysInMonth(%d, %d) = %d, want %d", tt.month, tt.year, got, tt.want)
		}
	}
}

func TestPrevMonthWrapsYear(t *testing.T) {
	month, year := PrevMonth(1, 2024)
	if month != 12 || year != 2023 {
		t.Errorf("PrevMonth(1, 2024) = %d/%d, want 12/2023", month, year)
	}
	month, year = NextMonth(12, 2023)
	if month != 1 || year != 2024 {
		t.Errorf("NextMonth(12, 2023) = %d/%d, want 1/2024", month, year)
	}
	if YearMonth(1, 2024) != YearMonth(12, 2023)+1 {
		t.Error("January 2024 should immediately follow December 2023")
	}
}
