package forecast

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idevisu/fincast/internal/models"
)

func TestResolveBillingDate(t *testing.T) {
	tests := []struct {
		name       string
		year       int
		month      time.Month
		billingDay int
		wantDay    int
	}{
		{name: "regular day", year: 2024, month: time.January, billingDay: 15, wantDay: 15},
		{name: "day 31 in a 30-day month", year: 2024, month: time.April, billingDay: 31, wantDay: 30},
		{name: "day 31 in leap february", year: 2024, month: time.February, billingDay: 31, wantDay: 29},
		{name: "day 30 in non-leap february", year: 2023, month: time.February, billingDay: 30, wantDay: 28},
		{name: "first of month", year: 2024, month: time.June, billingDay: 1, wantDay: 1},
		{name: "last day of a 31-day month", year: 2024, month: time.July, billingDay: 31, wantDay: 31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveBillingDate(tt.year, tt.month, tt.billingDay)
			assert.Equal(t, tt.year, got.Year())
			assert.Equal(t, tt.month, got.Month())
			assert.Equal(t, tt.wantDay, got.Day())
		})
	}
}

func TestExpandCycles(t *testing.T) {
	horizonStart := models.MonthKey{Year: 2024, Month: time.January}
	horizonEnd := models.MonthKey{Year: 2024, Month: time.April}

	base := models.RecurringSeries{
		Name:          "Hosting",
		Direction:     models.DirectionExpense,
		MonthlyAmount: decimal.NewFromInt(50),
		BillingDay:    15,
		Active:        true,
	}

	t.Run("start before horizon clamps to horizon start", func(t *testing.T) {
		s := base
		s.StartDate = time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
		cycles := expandCycles(s, horizonStart, horizonEnd)
		require.Len(t, cycles, 4)
		assert.Equal(t, models.MonthKey{Year: 2024, Month: time.January}, cycles[0])
		assert.Equal(t, models.MonthKey{Year: 2024, Month: time.April}, cycles[3])
	})

	t.Run("start inside horizon", func(t *testing.T) {
		s := base
		s.StartDate = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		cycles := expandCycles(s, horizonStart, horizonEnd)
		require.Len(t, cycles, 2)
		assert.Equal(t, models.MonthKey{Year: 2024, Month: time.March}, cycles[0])
	})

	t.Run("start past horizon yields nothing", func(t *testing.T) {
		s := base
		s.StartDate = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
		assert.Empty(t, expandCycles(s, horizonStart, horizonEnd))
	})

	t.Run("end date truncates the horizon", func(t *testing.T) {
		s := base
		s.StartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)
		s.EndDate = &end
		cycles := expandCycles(s, horizonStart, horizonEnd)
		require.Len(t, cycles, 2)
		assert.Equal(t, models.MonthKey{Year: 2024, Month: time.February}, cycles[1])
	})

	t.Run("end date before start date yields nothing", func(t *testing.T) {
		s := base
		s.StartDate = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
		s.EndDate = &end
		assert.Empty(t, expandCycles(s, horizonStart, horizonEnd))
	})
}

func TestHorizonKeysCrossesYearBoundary(t *testing.T) {
	keys := horizonKeys(models.MonthKey{Year: 2024, Month: time.November}, 4)
	require.Len(t, keys, 4)
	assert.Equal(t, models.MonthKey{Year: 2024, Month: time.November}, keys[0])
	assert.Equal(t, models.MonthKey{Year: 2024, Month: time.December}, keys[1])
	assert.Equal(t, models.MonthKey{Year: 2025, Month: time.January}, keys[2])
	assert.Equal(t, models.MonthKey{Year: 2025, Month: time.February}, keys[3])
}
