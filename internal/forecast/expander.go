package forecast

import (
	"time"

	"github.com/idevisu/fincast/internal/models"
)

// ResolveBillingDate returns the concrete due date for a nominal billing day
// within a month. Days past the end of the month clamp to the month's last
// day, so billing day 31 resolves to April 30 or February 28/29.
func ResolveBillingDate(year int, month time.Month, billingDay int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := billingDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// expandCycles lists the billing cycles of s that fall inside the horizon
// [start, end], one per calendar month in ascending order. A series starting
// past the horizon, or ending before it starts, yields no cycles.
func expandCycles(s models.RecurringSeries, start, end models.MonthKey) []models.MonthKey {
	first := models.MonthKeyOf(s.StartDate)
	if first.Before(start) {
		first = start
	}
	last := end
	if s.EndDate != nil {
		seriesEnd := models.MonthKeyOf(*s.EndDate)
		if seriesEnd.Before(last) {
			last = seriesEnd
		}
	}

	var cycles []models.MonthKey
	for k := first; !last.Before(k); k = k.Next() {
		cycles = append(cycles, k)
	}
	return cycles
}

// horizonKeys lists every month of an n-month horizon beginning at start
func horizonKeys(start models.MonthKey, n int) []models.MonthKey {
	keys := make([]models.MonthKey, 0, n)
	for k := start; len(keys) < n; k = k.Next() {
		keys = append(keys, k)
	}
	return keys
}
