// Package forecast implements the recurring-obligation reconciliation and
// forecast engine. It merges two independent sources of financial truth,
// one-off ledger entries and recurring billing schedules, into a single
// deduplicated, month-bucketed projection of money expected to move.
//
// The engine is a pure function over already-fetched snapshots: it owns no
// state, performs no I/O, and is safe to call concurrently.
package forecast

import (
	"time"

	"github.com/idevisu/fincast/internal/models"
)

// Snapshot carries the three point-in-time inputs of a computation
type Snapshot struct {
	Entries  []models.LedgerEntry
	Series   []models.RecurringSeries
	Payments []models.SeriesPayment
}

// Options control one forecast computation
type Options struct {
	// Months is the horizon length. Non-positive yields an empty result.
	Months int
	// Reference anchors the horizon: the first bucket is Reference's month.
	Reference time.Time
	// Direction restricts the forecast to income or expense obligations.
	// Empty means both.
	Direction models.Direction
	// View selects outstanding or scheduled totals. Defaults to outstanding.
	View View
}

// Compute derives the month-bucketed forecast for the horizon starting at
// the month of opts.Reference. The result always contains exactly
// opts.Months buckets in ascending month order. Deterministic: identical
// snapshots and options produce identical buckets. Malformed input records
// are skipped rather than failing the computation.
func Compute(snap Snapshot, opts Options) []models.MonthBucket {
	if opts.Months <= 0 {
		return []models.MonthBucket{}
	}
	view := opts.View
	if !view.Valid() {
		view = ViewOutstanding
	}

	keys := horizonKeys(models.MonthKeyOf(opts.Reference), opts.Months)
	start, end := keys[0], keys[len(keys)-1]

	occurrences, resolved := resolveSeries(selectSeries(snap.Series, opts.Direction), snap.Payments, start, end)
	entryIDs, paymentIDs := materializedLinks(snap.Payments, resolved)
	entries := filterLedger(selectEntries(snap.Entries, opts.Direction), entryIDs, paymentIDs)

	obligations := make([]models.ResolvedObligation, 0, len(entries)+len(occurrences))
	for _, e := range entries {
		obligations = append(obligations, ledgerObligation(e))
	}
	obligations = append(obligations, occurrences...)

	return bucketize(obligations, keys, view)
}

// ledgerObligation converts a ledger entry into its forecast line item,
// carrying the amount still expected to move rather than the face value.
func ledgerObligation(e models.LedgerEntry) models.ResolvedObligation {
	id := e.ID
	return models.ResolvedObligation{
		Source:        models.SourceLedger,
		Description:   e.Description,
		Amount:        e.ForecastAmount(),
		DueDate:       *e.DueDate,
		Status:        e.PaymentStatus,
		Direction:     e.Direction,
		LedgerEntryID: &id,
	}
}

func selectSeries(series []models.RecurringSeries, d models.Direction) []models.RecurringSeries {
	if d == "" {
		return series
	}
	out := make([]models.RecurringSeries, 0, len(series))
	for _, s := range series {
		if s.Direction == d {
			out = append(out, s)
		}
	}
	return out
}

func selectEntries(entries []models.LedgerEntry, d models.Direction) []models.LedgerEntry {
	if d == "" {
		return entries
	}
	out := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if e.Direction == d {
			out = append(out, e)
		}
	}
	return out
}
