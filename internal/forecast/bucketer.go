package forecast

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/idevisu/fincast/internal/models"
)

// View selects which settlement states a forecast includes
type View string

const (
	// ViewOutstanding reports only money still owed: paid obligations are
	// dropped entirely.
	ViewOutstanding View = "outstanding"
	// ViewScheduled reports everything expected to move in a month,
	// settled or not: paid obligations appear at face value.
	ViewScheduled View = "scheduled"
)

// Valid reports whether the view is a known value
func (v View) Valid() bool {
	return v == ViewOutstanding || v == ViewScheduled
}

// includeInView decides whether an obligation belongs in a view's buckets.
// Unsettled obligations must contribute a strictly positive amount.
func includeInView(o models.ResolvedObligation, view View) bool {
	if o.Status == models.StatusPaid {
		return view == ViewScheduled
	}
	return o.Amount.IsPositive()
}

// bucketize groups obligations into pre-seeded month buckets and totals each
// bucket with decimal arithmetic. Every horizon month gets a bucket even when
// nothing falls into it; obligations due outside the horizon are dropped.
// Entries within a bucket are ordered by due date, ties keeping input order.
func bucketize(obligations []models.ResolvedObligation, keys []models.MonthKey, view View) []models.MonthBucket {
	buckets := make([]models.MonthBucket, len(keys))
	index := make(map[models.MonthKey]int, len(keys))
	for i, k := range keys {
		buckets[i] = models.MonthBucket{
			Key:     k,
			Total:   decimal.Zero,
			Entries: []models.ResolvedObligation{},
		}
		index[k] = i
	}

	for _, o := range obligations {
		if !includeInView(o, view) {
			continue
		}
		i, ok := index[models.MonthKeyOf(o.DueDate)]
		if !ok {
			continue
		}
		buckets[i].Entries = append(buckets[i].Entries, o)
		buckets[i].Total = buckets[i].Total.Add(o.Amount)
	}

	for i := range buckets {
		entries := buckets[i].Entries
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].DueDate.Before(entries[b].DueDate)
		})
	}
	return buckets
}
