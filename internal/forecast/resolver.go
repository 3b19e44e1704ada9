package forecast

import (
	"github.com/google/uuid"
	"github.com/idevisu/fincast/internal/models"
	"time"
)

// cycleKey addresses one billing cycle of one series
type cycleKey struct {
	seriesID uuid.UUID
	year     int
	month    time.Month
}

// indexPayments maps materialized payment records by their cycle. A second
// record for the same cycle is ignored; the storage layer enforces
// uniqueness, so first-wins only matters for untrusted snapshots.
func indexPayments(payments []models.SeriesPayment) map[cycleKey]models.SeriesPayment {
	byCycle := make(map[cycleKey]models.SeriesPayment, len(payments))
	for _, p := range payments {
		k := cycleKey{seriesID: p.SeriesID, year: p.Year, month: p.Month}
		if _, ok := byCycle[k]; !ok {
			byCycle[k] = p
		}
	}
	return byCycle
}

// eligibleSeries reports whether a series participates in resolution at all.
// Inactive or malformed series are skipped, not errors.
func eligibleSeries(s models.RecurringSeries) bool {
	if !s.Active || !s.Direction.Valid() {
		return false
	}
	if s.StartDate.IsZero() || !s.MonthlyAmount.IsPositive() {
		return false
	}
	return s.BillingDay >= 1 && s.BillingDay <= 31
}

// resolveSeries expands every eligible series over the horizon and
// reconciles each cycle against the materialized payment records. A cycle
// with a paid or skipped record is settled and produces nothing; a record
// with any other status overrides the series defaults (the amount may have
// been adjusted by hand); a cycle without a record becomes a pending
// projection at the series' monthly amount. The result carries at most one
// occurrence per (series, year, month).
//
// The second return value is the set of series ids that took part, which the
// dedup filter needs to decide whose materialized ledger entries to suppress.
func resolveSeries(series []models.RecurringSeries, payments []models.SeriesPayment, start, end models.MonthKey) ([]models.ResolvedObligation, map[uuid.UUID]struct{}) {
	byCycle := indexPayments(payments)
	resolved := make(map[uuid.UUID]struct{}, len(series))
	var out []models.ResolvedObligation

	for _, s := range series {
		if !eligibleSeries(s) {
			continue
		}
		resolved[s.ID] = struct{}{}
		sid := s.ID

		for _, ck := range expandCycles(s, start, end) {
			amount := s.MonthlyAmount
			status := models.StatusPending
			if p, ok := byCycle[cycleKey{seriesID: s.ID, year: ck.Year, month: ck.Month}]; ok {
				if p.Status == models.StatusPaid || p.Status == models.StatusSkipped {
					continue
				}
				amount = p.Amount
				status = p.Status
			}
			out = append(out, models.ResolvedObligation{
				Source:      models.SourceSeries,
				Description: s.Name,
				Amount:      amount,
				DueDate:     ResolveBillingDate(ck.Year, ck.Month, s.BillingDay),
				Status:      status,
				Direction:   s.Direction,
				SeriesID:    &sid,
			})
		}
	}
	return out, resolved
}
