package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/idevisu/fincast/internal/models"
)

// ErrNotFound reports that the requested record does not exist
var ErrNotFound = errors.New("not found")

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ListLedgerEntries retrieves ledger entries, optionally filtered by
// direction. An empty direction returns both income and expense entries.
func (r *Repository) ListLedgerEntries(direction models.Direction) ([]models.LedgerEntry, error) {
	query := `
		SELECT id, direction, description, amount, remaining_amount, due_date,
		       payment_status, series_payment_id, created_at, updated_at
		FROM ledger_entries
		WHERE ($1 = '' OR direction = $1)
		ORDER BY due_date NULLS LAST, created_at`
	rows, err := r.db.Query(query, string(direction))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var (
			e         models.LedgerEntry
			dueDate   sql.NullTime
			paymentID uuid.NullUUID
		)
		if err := rows.Scan(&e.ID, &e.Direction, &e.Description, &e.Amount, &e.RemainingAmount,
			&dueDate, &e.PaymentStatus, &paymentID, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if dueDate.Valid {
			d := dueDate.Time
			e.DueDate = &d
		}
		if paymentID.Valid {
			id := paymentID.UUID
			e.SeriesPaymentID = &id
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ledger entries: %w", err)
	}
	return entries, nil
}

// ListActiveSeries retrieves all active recurring series
func (r *Repository) ListActiveSeries() ([]models.RecurringSeries, error) {
	query := `
		SELECT id, name, direction, monthly_amount, start_date, end_date,
		       billing_day, active, created_at, updated_at
		FROM recurring_series
		WHERE active
		ORDER BY start_date, name`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring series: %w", err)
	}
	defer rows.Close()

	var series []models.RecurringSeries
	for rows.Next() {
		var (
			s       models.RecurringSeries
			endDate sql.NullTime
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Direction, &s.MonthlyAmount, &s.StartDate,
			&endDate, &s.BillingDay, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring series: %w", err)
		}
		if endDate.Valid {
			d := endDate.Time
			s.EndDate = &d
		}
		series = append(series, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read recurring series: %w", err)
	}
	return series, nil
}

// ListSeriesPayments retrieves every materialized payment record belonging
// to an active series
func (r *Repository) ListSeriesPayments() ([]models.SeriesPayment, error) {
	query := `
		SELECT p.id, p.series_id, p.year, p.month, p.amount, p.status,
		       p.ledger_entry_id, p.created_at, p.updated_at
		FROM series_payments p
		JOIN recurring_series s ON s.id = p.series_id
		WHERE s.active
		ORDER BY p.year, p.month`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list series payments: %w", err)
	}
	defer rows.Close()

	var payments []models.SeriesPayment
	for rows.Next() {
		var (
			p       models.SeriesPayment
			month   int
			entryID uuid.NullUUID
		)
		if err := rows.Scan(&p.ID, &p.SeriesID, &p.Year, &month, &p.Amount, &p.Status,
			&entryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan series payment: %w", err)
		}
		p.Month = time.Month(month)
		if entryID.Valid {
			id := entryID.UUID
			p.LedgerEntryID = &id
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read series payments: %w", err)
	}
	return payments, nil
}

// FindSeriesByID retrieves one recurring series
func (r *Repository) FindSeriesByID(id uuid.UUID) (*models.RecurringSeries, error) {
	s := &models.RecurringSeries{}
	var endDate sql.NullTime
	query := `
		SELECT id, name, direction, monthly_amount, start_date, end_date,
		       billing_day, active, created_at, updated_at
		FROM recurring_series
		WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&s.ID, &s.Name, &s.Direction, &s.MonthlyAmount,
		&s.StartDate, &endDate, &s.BillingDay, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("series %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find series: %w", err)
	}
	if endDate.Valid {
		d := endDate.Time
		s.EndDate = &d
	}
	return s, nil
}

// CreateLedgerEntry inserts a new ledger entry
func (r *Repository) CreateLedgerEntry(e *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (id, direction, description, amount, remaining_amount,
		                            due_date, payment_status, series_payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	var paymentID interface{}
	if e.SeriesPaymentID != nil {
		paymentID = *e.SeriesPaymentID
	}
	var dueDate interface{}
	if e.DueDate != nil {
		dueDate = *e.DueDate
	}
	err := r.db.QueryRow(query, e.ID, e.Direction, e.Description, e.Amount, e.RemainingAmount,
		dueDate, e.PaymentStatus, paymentID).
		Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// DeleteLedgerEntry removes a ledger entry
func (r *Repository) DeleteLedgerEntry(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM ledger_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete ledger entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("ledger entry %w", ErrNotFound)
	}
	return nil
}

// CreateSeries inserts a new recurring series
func (r *Repository) CreateSeries(s *models.RecurringSeries) error {
	query := `
		INSERT INTO recurring_series (id, name, direction, monthly_amount, start_date,
		                              end_date, billing_day, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	var endDate interface{}
	if s.EndDate != nil {
		endDate = *s.EndDate
	}
	err := r.db.QueryRow(query, s.ID, s.Name, s.Direction, s.MonthlyAmount, s.StartDate,
		endDate, s.BillingDay, s.Active).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}
	return nil
}

// DeactivateSeries marks a series inactive so it stops projecting cycles.
// Materialized payments and ledger entries are kept.
func (r *Repository) DeactivateSeries(id uuid.UUID) error {
	res, err := r.db.Exec(`
		UPDATE recurring_series
		SET active = FALSE, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate series: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to deactivate series: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("series %w", ErrNotFound)
	}
	return nil
}

// RecordSeriesPayment materializes one billing cycle in a single
// transaction: the payment record is upserted on its (series, year, month)
// cell, the ledger entry it produced is inserted, and the two are linked in
// both directions.
func (r *Repository) RecordSeriesPayment(p *models.SeriesPayment, entry *models.LedgerEntry) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO series_payments (id, series_id, year, month, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (series_id, year, month)
		DO UPDATE SET amount = EXCLUDED.amount, status = EXCLUDED.status, updated_at = CURRENT_TIMESTAMP
		RETURNING id, created_at, updated_at`
	err = tx.QueryRow(upsert, p.ID, p.SeriesID, p.Year, int(p.Month), p.Amount, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert series payment: %w", err)
	}

	entry.SeriesPaymentID = &p.ID
	insert := `
		INSERT INTO ledger_entries (id, direction, description, amount, remaining_amount,
		                            due_date, payment_status, series_payment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		RETURNING created_at, updated_at`
	var dueDate interface{}
	if entry.DueDate != nil {
		dueDate = *entry.DueDate
	}
	err = tx.QueryRow(insert, entry.ID, entry.Direction, entry.Description, entry.Amount,
		entry.RemainingAmount, dueDate, entry.PaymentStatus, p.ID).
		Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to materialize ledger entry: %w", err)
	}

	if _, err := tx.Exec(`UPDATE series_payments SET ledger_entry_id = $1 WHERE id = $2`, entry.ID, p.ID); err != nil {
		return fmt.Errorf("failed to link ledger entry: %w", err)
	}
	p.LedgerEntryID = &entry.ID

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit series payment: %w", err)
	}
	return nil
}

// SkipSeriesCycle marks one billing cycle as intentionally waived
func (r *Repository) SkipSeriesCycle(seriesID uuid.UUID, year int, month time.Month) error {
	query := `
		INSERT INTO series_payments (id, series_id, year, month, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 'skipped', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (series_id, year, month)
		DO UPDATE SET status = 'skipped', updated_at = CURRENT_TIMESTAMP`
	if _, err := r.db.Exec(query, uuid.New(), seriesID, year, int(month)); err != nil {
		return fmt.Errorf("failed to skip series cycle: %w", err)
	}
	return nil
}
