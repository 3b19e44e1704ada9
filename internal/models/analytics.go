package models

import "github.com/shopspring/decimal"

// CashflowPoint represents expected money movement for one month
type CashflowPoint struct {
	Month   MonthKey        `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// OverdueAlert flags a month whose outstanding obligations include entries
// already past their due date
type OverdueAlert struct {
	Month        MonthKey             `json:"month"`
	OverdueTotal decimal.Decimal      `json:"overdue_total"`
	Entries      []ResolvedObligation `json:"entries"`
}
