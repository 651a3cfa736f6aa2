package core

// MonthTotals is a compact income/expense rollup for one month. The totals
// cover every entry in the month regardless of paid state; only balance
// snapshots are restricted to paid entries.
type MonthTotals struct {
	Year     int
	Month    int // 1-12
	Income   Money
	Expenses Money
	Net      Money
}
