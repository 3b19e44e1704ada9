package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecurringSeries represents a subscription-like recurring obligation that
// bills once per calendar month on a nominal billing day.
type RecurringSeries struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Direction     Direction       `json:"direction"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       *time.Time      `json:"end_date,omitempty"`
	BillingDay    int             `json:"billing_day"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SeriesPayment represents a materialized billing cycle of a recurring
// series: a concrete record for one (series, year, month) cell, possibly
// linked to the ledger entry it produced.
type SeriesPayment struct {
	ID            uuid.UUID       `json:"id"`
	SeriesID      uuid.UUID       `json:"series_id"`
	Year          int             `json:"year"`
	Month         time.Month      `json:"month"`
	Amount        decimal.Decimal `json:"amount"`
	Status        PaymentStatus   `json:"status"`
	LedgerEntryID *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
