package forecast

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idevisu/fincast/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func hostingSeries() models.RecurringSeries {
	return models.RecurringSeries{
		ID:            uuid.New(),
		Name:          "Hosting",
		Direction:     models.DirectionExpense,
		MonthlyAmount: decimal.NewFromInt(50),
		StartDate:     date(2024, time.January, 1),
		BillingDay:    15,
		Active:        true,
	}
}

func pendingEntry(amount int64, due time.Time) models.LedgerEntry {
	return models.LedgerEntry{
		ID:            uuid.New(),
		Direction:     models.DirectionExpense,
		Description:   "One-off",
		Amount:        decimal.NewFromInt(amount),
		DueDate:       &due,
		PaymentStatus: models.StatusPending,
	}
}

func opts(months int) Options {
	return Options{Months: months, Reference: date(2024, time.January, 1)}
}

func TestComputeProjectsRecurringSeriesAcrossHorizon(t *testing.T) {
	snap := Snapshot{Series: []models.RecurringSeries{hostingSeries()}}

	buckets := Compute(snap, opts(3))

	require.Len(t, buckets, 3)
	for i, b := range buckets {
		assert.Equal(t, models.MonthKey{Year: 2024, Month: time.January + time.Month(i)}, b.Key)
		require.Len(t, b.Entries, 1, "month %s", b.Key)
		assert.True(t, b.Total.Equal(decimal.NewFromInt(50)), "month %s total %s", b.Key, b.Total)
		assert.Equal(t, models.SourceSeries, b.Entries[0].Source)
		assert.Equal(t, models.StatusPending, b.Entries[0].Status)
		assert.Equal(t, 15, b.Entries[0].DueDate.Day())
	}
}

func TestComputePaidCycleSettlesItsMonth(t *testing.T) {
	s := hostingSeries()
	snap := Snapshot{
		Series: []models.RecurringSeries{s},
		Payments: []models.SeriesPayment{{
			ID:       uuid.New(),
			SeriesID: s.ID,
			Year:     2024,
			Month:    time.February,
			Amount:   decimal.NewFromInt(50),
			Status:   models.StatusPaid,
		}},
	}

	buckets := Compute(snap, opts(3))

	require.Len(t, buckets, 3)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(50)))
	assert.True(t, buckets[1].Total.IsZero(), "paid cycle must not be forecast")
	assert.Empty(t, buckets[1].Entries)
	assert.True(t, buckets[2].Total.Equal(decimal.NewFromInt(50)))
}

func TestComputeSkippedCycleContributesNothing(t *testing.T) {
	s := hostingSeries()
	snap := Snapshot{
		Series: []models.RecurringSeries{s},
		Payments: []models.SeriesPayment{{
			ID:       uuid.New(),
			SeriesID: s.ID,
			Year:     2024,
			Month:    time.March,
			Amount:   decimal.Zero,
			Status:   models.StatusSkipped,
		}},
	}

	buckets := Compute(snap, opts(3))

	assert.True(t, buckets[2].Total.IsZero())
	assert.Empty(t, buckets[2].Entries)
}

func TestComputeMaterializedRecordOverridesSeriesAmount(t *testing.T) {
	s := hostingSeries()
	snap := Snapshot{
		Series: []models.RecurringSeries{s},
		Payments: []models.SeriesPayment{{
			ID:       uuid.New(),
			SeriesID: s.ID,
			Year:     2024,
			Month:    time.January,
			Amount:   decimal.NewFromInt(65),
			Status:   models.StatusPending,
		}},
	}

	buckets := Compute(snap, opts(1))

	require.Len(t, buckets[0].Entries, 1)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(65)))
}

func TestComputePartialEntryContributesRemainder(t *testing.T) {
	e := pendingEntry(200, date(2024, time.March, 10))
	e.PaymentStatus = models.StatusPartial
	e.RemainingAmount = decimal.NewNullDecimal(decimal.NewFromInt(80))
	snap := Snapshot{Entries: []models.LedgerEntry{e}}

	buckets := Compute(snap, opts(3))

	require.Len(t, buckets[2].Entries, 1)
	assert.True(t, buckets[2].Total.Equal(decimal.NewFromInt(80)), "got %s", buckets[2].Total)
}

func TestComputePartialEntryWithoutRemainderForecastsFullAmount(t *testing.T) {
	e := pendingEntry(200, date(2024, time.January, 10))
	e.PaymentStatus = models.StatusPartial
	snap := Snapshot{Entries: []models.LedgerEntry{e}}

	buckets := Compute(snap, opts(1))

	require.Len(t, buckets[0].Entries, 1)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(200)))
}

func TestComputeSuppressesMaterializedLedgerEntry(t *testing.T) {
	s := hostingSeries()
	entry := pendingEntry(50, date(2024, time.April, 15))
	paymentID := uuid.New()
	entryID := entry.ID
	snap := Snapshot{
		Entries: []models.LedgerEntry{entry},
		Series:  []models.RecurringSeries{s},
		Payments: []models.SeriesPayment{{
			ID:            paymentID,
			SeriesID:      s.ID,
			Year:          2024,
			Month:         time.April,
			Amount:        decimal.NewFromInt(50),
			Status:        models.StatusPending,
			LedgerEntryID: &entryID,
		}},
	}

	buckets := Compute(snap, Options{Months: 1, Reference: date(2024, time.April, 1)})

	require.Len(t, buckets, 1)
	require.Len(t, buckets[0].Entries, 1, "cycle must be counted exactly once")
	assert.Equal(t, models.SourceSeries, buckets[0].Entries[0].Source)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(50)))
}

func TestComputeSuppressesEntryViaBackReference(t *testing.T) {
	s := hostingSeries()
	paymentID := uuid.New()
	entry := pendingEntry(50, date(2024, time.January, 15))
	entry.SeriesPaymentID = &paymentID
	snap := Snapshot{
		Entries: []models.LedgerEntry{entry},
		Series:  []models.RecurringSeries{s},
		Payments: []models.SeriesPayment{{
			ID:       paymentID,
			SeriesID: s.ID,
			Year:     2024,
			Month:    time.January,
			Amount:   decimal.NewFromInt(50),
			Status:   models.StatusPending,
		}},
	}

	buckets := Compute(snap, opts(1))

	require.Len(t, buckets[0].Entries, 1)
	assert.Equal(t, models.SourceSeries, buckets[0].Entries[0].Source)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(50)))
}

func TestComputeNonPositiveHorizonYieldsEmptyResult(t *testing.T) {
	snap := Snapshot{Series: []models.RecurringSeries{hostingSeries()}}

	assert.Empty(t, Compute(snap, opts(0)))
	assert.Empty(t, Compute(snap, opts(-3)))
	assert.NotNil(t, Compute(snap, opts(0)))
}

func TestComputeSeriesEndDateStopsProjection(t *testing.T) {
	s := hostingSeries()
	end := date(2024, time.February, 28)
	s.EndDate = &end
	snap := Snapshot{Series: []models.RecurringSeries{s}}

	buckets := Compute(snap, opts(4))

	require.Len(t, buckets, 4)
	assert.Len(t, buckets[0].Entries, 1)
	assert.Len(t, buckets[1].Entries, 1)
	assert.Empty(t, buckets[2].Entries)
	assert.Empty(t, buckets[3].Entries)
}

func TestComputeHorizonCompleteness(t *testing.T) {
	buckets := Compute(Snapshot{}, Options{Months: 12, Reference: date(2024, time.October, 20)})

	require.Len(t, buckets, 12)
	want := models.MonthKey{Year: 2024, Month: time.October}
	for _, b := range buckets {
		assert.Equal(t, want, b.Key)
		assert.True(t, b.Total.IsZero())
		assert.NotNil(t, b.Entries)
		want = want.Next()
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	s := hostingSeries()
	e := pendingEntry(120, date(2024, time.February, 3))
	snap := Snapshot{Entries: []models.LedgerEntry{e}, Series: []models.RecurringSeries{s}}

	first := Compute(snap, opts(6))
	second := Compute(snap, opts(6))

	assert.Equal(t, first, second)
}

func TestComputeSkipsMalformedRecords(t *testing.T) {
	noDueDate := models.LedgerEntry{
		ID:            uuid.New(),
		Direction:     models.DirectionExpense,
		Amount:        decimal.NewFromInt(10),
		PaymentStatus: models.StatusPending,
	}
	negative := pendingEntry(-40, date(2024, time.January, 5))
	badDay := hostingSeries()
	badDay.BillingDay = 0
	inactive := hostingSeries()
	inactive.Active = false
	ok := pendingEntry(25, date(2024, time.January, 20))

	snap := Snapshot{
		Entries: []models.LedgerEntry{noDueDate, negative, ok},
		Series:  []models.RecurringSeries{badDay, inactive},
	}

	buckets := Compute(snap, opts(1))

	require.Len(t, buckets[0].Entries, 1)
	assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(25)))
}

func TestComputeViews(t *testing.T) {
	paid := pendingEntry(100, date(2024, time.January, 5))
	paid.PaymentStatus = models.StatusPaid
	open := pendingEntry(40, date(2024, time.January, 12))
	snap := Snapshot{Entries: []models.LedgerEntry{paid, open}}

	t.Run("outstanding excludes paid entries", func(t *testing.T) {
		buckets := Compute(snap, Options{Months: 1, Reference: date(2024, time.January, 1), View: ViewOutstanding})
		require.Len(t, buckets[0].Entries, 1)
		assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(40)))
	})

	t.Run("scheduled includes paid entries at face value", func(t *testing.T) {
		buckets := Compute(snap, Options{Months: 1, Reference: date(2024, time.January, 1), View: ViewScheduled})
		require.Len(t, buckets[0].Entries, 2)
		assert.True(t, buckets[0].Total.Equal(decimal.NewFromInt(140)))
	})
}

func TestComputeDirectionFilter(t *testing.T) {
	invoice := pendingEntry(300, date(2024, time.January, 10))
	invoice.Direction = models.DirectionIncome
	rent := pendingEntry(90, date(2024, time.January, 8))
	retainer := hostingSeries()
	retainer.Name = "Retainer"
	retainer.Direction = models.DirectionIncome
	retainer.MonthlyAmount = decimal.NewFromInt(500)
	snap := Snapshot{
		Entries: []models.LedgerEntry{invoice, rent},
		Series:  []models.RecurringSeries{retainer, hostingSeries()},
	}

	income := Compute(snap, Options{Months: 1, Reference: date(2024, time.January, 1), Direction: models.DirectionIncome})
	require.Len(t, income[0].Entries, 2)
	assert.True(t, income[0].Total.Equal(decimal.NewFromInt(800)))

	expense := Compute(snap, Options{Months: 1, Reference: date(2024, time.January, 1), Direction: models.DirectionExpense})
	require.Len(t, expense[0].Entries, 2)
	assert.True(t, expense[0].Total.Equal(decimal.NewFromInt(140)))
}

func TestComputeSortsBucketEntriesByDueDate(t *testing.T) {
	late := pendingEntry(10, date(2024, time.January, 25))
	late.Description = "late"
	early := pendingEntry(20, date(2024, time.January, 2))
	early.Description = "early"
	tiedA := pendingEntry(30, date(2024, time.January, 10))
	tiedA.Description = "tie-a"
	tiedB := pendingEntry(40, date(2024, time.January, 10))
	tiedB.Description = "tie-b"
	snap := Snapshot{Entries: []models.LedgerEntry{late, tiedA, tiedB, early}}

	buckets := Compute(snap, opts(1))

	require.Len(t, buckets[0].Entries, 4)
	got := make([]string, 0, 4)
	for _, o := range buckets[0].Entries {
		got = append(got, o.Description)
	}
	assert.Equal(t, []string{"early", "tie-a", "tie-b", "late"}, got)
}

func TestComputeDecimalTotalsDoNotDrift(t *testing.T) {
	cents := decimal.RequireFromString("0.10")
	var entries []models.LedgerEntry
	for i := 0; i < 30; i++ {
		e := pendingEntry(0, date(2024, time.January, 1+i%28))
		e.Amount = cents
		entries = append(entries, e)
	}

	buckets := Compute(Snapshot{Entries: entries}, opts(1))

	assert.True(t, buckets[0].Total.Equal(decimal.RequireFromString("3.00")), "got %s", buckets[0].Total)
}
