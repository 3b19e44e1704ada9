package repository

import (
	"database/sql"
	"fmt"
)

// Fixed ids keep the demo data set idempotent across reruns.
const seedSQL = `
	INSERT INTO recurring_series (id, name, direction, monthly_amount, start_date, billing_day, active) VALUES
		('6c1a2f6e-0001-4a7b-9c10-2f58a1c0aa01', 'Office rent', 'expense', 1200.00, '2024-01-01', 5, TRUE),
		('6c1a2f6e-0002-4a7b-9c10-2f58a1c0aa02', 'Hosting', 'expense', 50.00, '2024-01-01', 15, TRUE),
		('6c1a2f6e-0003-4a7b-9c10-2f58a1c0aa03', 'Support retainer', 'income', 800.00, '2024-02-01', 1, TRUE)
	ON CONFLICT (id) DO NOTHING;

	INSERT INTO ledger_entries (id, direction, description, amount, remaining_amount, due_date, payment_status) VALUES
		('9d3b4c7f-0001-4d2e-8a31-5b66c2d1bb01', 'income', 'Website project invoice', 2500.00, NULL, '2024-03-20', 'pending'),
		('9d3b4c7f-0002-4d2e-8a31-5b66c2d1bb02', 'income', 'Consulting March', 1000.00, 400.00, '2024-03-10', 'partial'),
		('9d3b4c7f-0003-4d2e-8a31-5b66c2d1bb03', 'expense', 'Accountant fee', 300.00, NULL, '2024-04-02', 'pending')
	ON CONFLICT (id) DO NOTHING;
`

// SeedDemo inserts a small idempotent demo data set
func SeedDemo(db *sql.DB) error {
	if _, err := db.Exec(seedSQL); err != nil {
		return fmt.Errorf("failed to seed demo data: %w", err)
	}
	return nil
}
