package forecast

import (
	"github.com/google/uuid"
	"github.com/idevisu/fincast/internal/models"
)

// materializedLinks collects, for every payment record belonging to a
// resolved series, the id of the ledger entry it materialized and the id of
// the record itself. Paid and skipped cycles are included on purpose: their
// ledger entries must still be suppressed even though the resolver produced
// no occurrence for them.
func materializedLinks(payments []models.SeriesPayment, resolved map[uuid.UUID]struct{}) (entryIDs, paymentIDs map[uuid.UUID]struct{}) {
	entryIDs = make(map[uuid.UUID]struct{})
	paymentIDs = make(map[uuid.UUID]struct{})
	for _, p := range payments {
		if _, ok := resolved[p.SeriesID]; !ok {
			continue
		}
		paymentIDs[p.ID] = struct{}{}
		if p.LedgerEntryID != nil {
			entryIDs[*p.LedgerEntryID] = struct{}{}
		}
	}
	return entryIDs, paymentIDs
}

// filterLedger drops ledger entries that are the materialized form of a
// recurring cycle, either because a payment record points at them or because
// they point back at a payment record, along with records too malformed to
// place in a bucket (no due date, non-positive amount).
func filterLedger(entries []models.LedgerEntry, entryIDs, paymentIDs map[uuid.UUID]struct{}) []models.LedgerEntry {
	kept := make([]models.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := entryIDs[e.ID]; ok {
			continue
		}
		if e.SeriesPaymentID != nil {
			if _, ok := paymentIDs[*e.SeriesPaymentID]; ok {
				continue
			}
		}
		if e.DueDate == nil || e.DueDate.IsZero() {
			continue
		}
		if !e.Amount.IsPositive() {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}
