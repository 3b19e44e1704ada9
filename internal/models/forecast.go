package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthKey identifies one calendar month
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthKeyOf returns the month containing t
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Before reports whether k precedes other
func (k MonthKey) Before(other MonthKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.Month < other.Month
}

// String formats the key as YYYY-MM
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// ObligationSource discriminates where a resolved obligation came from
type ObligationSource string

const (
	SourceLedger ObligationSource = "ledger"
	SourceSeries ObligationSource = "series"
)

// ResolvedObligation is one forecast line item: either a raw ledger entry
// or a resolved recurring-series occurrence. Amount is the amount the
// obligation contributes to its bucket, not necessarily the full face value.
type ResolvedObligation struct {
	Source        ObligationSource `json:"source"`
	Description   string           `json:"description"`
	Amount        decimal.Decimal  `json:"amount"`
	DueDate       time.Time        `json:"due_date"`
	Status        PaymentStatus    `json:"status"`
	Direction     Direction        `json:"direction"`
	LedgerEntryID *uuid.UUID       `json:"ledger_entry_id,omitempty"`
	SeriesID      *uuid.UUID       `json:"series_id,omitempty"`
}

// MonthBucket aggregates the obligations of one calendar month
type MonthBucket struct {
	Key     MonthKey             `json:"month"`
	Total   decimal.Decimal      `json:"total"`
	Entries []ResolvedObligation `json:"entries"`
}
