package repository

import (
	"database/sql"
	"fmt"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS recurring_series (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		direction TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
		monthly_amount DECIMAL(14,2) NOT NULL,
		start_date DATE NOT NULL,
		end_date DATE,
		billing_day INTEGER NOT NULL CHECK (billing_day BETWEEN 1 AND 31),
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS series_payments (
		id UUID PRIMARY KEY,
		series_id UUID NOT NULL REFERENCES recurring_series(id),
		year INTEGER NOT NULL,
		month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
		amount DECIMAL(14,2) NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('paid', 'pending', 'skipped')),
		ledger_entry_id UUID,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (series_id, year, month)
	);

	CREATE TABLE IF NOT EXISTS ledger_entries (
		id UUID PRIMARY KEY,
		direction TEXT NOT NULL CHECK (direction IN ('income', 'expense')),
		description TEXT NOT NULL DEFAULT '',
		amount DECIMAL(14,2) NOT NULL,
		remaining_amount DECIMAL(14,2),
		due_date DATE,
		payment_status TEXT NOT NULL DEFAULT 'pending' CHECK (payment_status IN ('paid', 'pending', 'partial')),
		series_payment_id UUID REFERENCES series_payments(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_direction ON ledger_entries(direction);
	CREATE INDEX IF NOT EXISTS idx_ledger_entries_due_date ON ledger_entries(due_date);
	CREATE INDEX IF NOT EXISTS idx_series_payments_series ON series_payments(series_id);
`

// Migrate creates the schema if it does not exist yet
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
