package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction classifies money movement
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Valid reports whether the direction is a known value
func (d Direction) Valid() bool {
	return d == DirectionIncome || d == DirectionExpense
}

// PaymentStatus represents the settlement state of an obligation
type PaymentStatus string

const (
	StatusPaid    PaymentStatus = "paid"
	StatusPending PaymentStatus = "pending"
	StatusPartial PaymentStatus = "partial"
	StatusSkipped PaymentStatus = "skipped"
)

// LedgerEntry represents a one-off financial obligation
type LedgerEntry struct {
	ID              uuid.UUID           `json:"id"`
	Direction       Direction           `json:"direction"`
	Description     string              `json:"description"`
	Amount          decimal.Decimal     `json:"amount"`
	RemainingAmount decimal.NullDecimal `json:"remaining_amount"`
	DueDate         *time.Time          `json:"due_date,omitempty"`
	PaymentStatus   PaymentStatus       `json:"payment_status"`
	SeriesPaymentID *uuid.UUID          `json:"series_payment_id,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// ForecastAmount returns the amount this entry contributes to a forecast:
// the remaining amount for unsettled entries that carry one, otherwise the
// full amount. An entry marked partial without a recorded remainder falls
// back to the full amount.
func (e LedgerEntry) ForecastAmount() decimal.Decimal {
	if e.RemainingAmount.Valid && (e.PaymentStatus == StatusPending || e.PaymentStatus == StatusPartial) {
		return e.RemainingAmount.Decimal
	}
	return e.Amount
}
