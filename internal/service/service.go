package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/idevisu/fincast/internal/cache"
	"github.com/idevisu/fincast/internal/forecast"
	"github.com/idevisu/fincast/internal/models"
)

// ErrInvalidInput marks a validation failure the caller can fix
var ErrInvalidInput = errors.New("invalid input")

// Store provides the persistence operations the service needs
type Store interface {
	ListLedgerEntries(direction models.Direction) ([]models.LedgerEntry, error)
	ListActiveSeries() ([]models.RecurringSeries, error)
	ListSeriesPayments() ([]models.SeriesPayment, error)
	FindSeriesByID(id uuid.UUID) (*models.RecurringSeries, error)
	CreateLedgerEntry(e *models.LedgerEntry) error
	DeleteLedgerEntry(id uuid.UUID) error
	CreateSeries(s *models.RecurringSeries) error
	DeactivateSeries(id uuid.UUID) error
	RecordSeriesPayment(p *models.SeriesPayment, entry *models.LedgerEntry) error
	SkipSeriesCycle(seriesID uuid.UUID, year int, month time.Month) error
}

// Cache holds computed forecasts between data changes
type Cache interface {
	Get(ctx context.Context, key string) ([]models.MonthBucket, bool)
	Set(ctx context.Context, key string, buckets []models.MonthBucket) error
	Invalidate(ctx context.Context) error
}

// Service handles business logic
type Service struct {
	store Store
	cache Cache
	log   *logrus.Logger
}

// NewService initializes a new service. cache may be nil, in which case
// every forecast is computed from fresh snapshots.
func NewService(store Store, c Cache, log *logrus.Logger) *Service {
	return &Service{store: store, cache: c, log: log}
}

// Forecast computes the month-bucketed forecast for opts, consulting the
// cache first. A zero reference time anchors the horizon at the current month.
func (s *Service) Forecast(ctx context.Context, opts forecast.Options) ([]models.MonthBucket, error) {
	if opts.Reference.IsZero() {
		opts.Reference = time.Now().UTC()
	}
	if !opts.View.Valid() {
		opts.View = forecast.ViewOutstanding
	}

	key := cache.Key(opts.Direction, opts.Months, string(opts.View), models.MonthKeyOf(opts.Reference))
	if s.cache != nil {
		if buckets, ok := s.cache.Get(ctx, key); ok {
			return buckets, nil
		}
	}

	snap, err := s.snapshot(opts.Direction)
	if err != nil {
		return nil, err
	}
	buckets := forecast.Compute(snap, opts)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, buckets); err != nil {
			s.log.Warnf("Failed to cache forecast: %v", err)
		}
	}
	return buckets, nil
}

// snapshot fetches the three engine inputs concurrently. The computation
// never starts before all three reads have finished.
func (s *Service) snapshot(direction models.Direction) (forecast.Snapshot, error) {
	var (
		snap                               forecast.Snapshot
		entriesErr, seriesErr, paymentsErr error
		wg                                 sync.WaitGroup
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		snap.Entries, entriesErr = s.store.ListLedgerEntries(direction)
	}()
	go func() {
		defer wg.Done()
		snap.Series, seriesErr = s.store.ListActiveSeries()
	}()
	go func() {
		defer wg.Done()
		snap.Payments, paymentsErr = s.store.ListSeriesPayments()
	}()
	wg.Wait()

	for _, err := range []error{entriesErr, seriesErr, paymentsErr} {
		if err != nil {
			return forecast.Snapshot{}, fmt.Errorf("failed to fetch snapshot: %w", err)
		}
	}
	return snap, nil
}

// Receivables returns the outstanding income forecast
func (s *Service) Receivables(ctx context.Context, months int) ([]models.MonthBucket, error) {
	if months <= 0 {
		months = 12
	}
	return s.Forecast(ctx, forecast.Options{
		Months:    months,
		Direction: models.DirectionIncome,
		View:      forecast.ViewOutstanding,
	})
}

// Cashflow returns the per-month scheduled income and expense series the
// dashboard charts render. Both directions are computed from one snapshot so
// the chart never mixes two points in time.
func (s *Service) Cashflow(ctx context.Context, months int) ([]models.CashflowPoint, error) {
	if months <= 0 {
		months = 6
	}
	snap, err := s.snapshot("")
	if err != nil {
		return nil, err
	}

	reference := time.Now().UTC()
	income := forecast.Compute(snap, forecast.Options{
		Months: months, Reference: reference, Direction: models.DirectionIncome, View: forecast.ViewScheduled,
	})
	expense := forecast.Compute(snap, forecast.Options{
		Months: months, Reference: reference, Direction: models.DirectionExpense, View: forecast.ViewScheduled,
	})

	points := make([]models.CashflowPoint, len(income))
	for i := range income {
		points[i] = models.CashflowPoint{
			Month:   income[i].Key,
			Income:  income[i].Total,
			Expense: expense[i].Total,
			Net:     income[i].Total.Sub(expense[i].Total),
		}
	}
	return points, nil
}

// overdueLookbackMonths is how far back the overdue scan reaches for unpaid
// obligations that have left the forward horizon.
const overdueLookbackMonths = 3

// Overdue flags the months whose outstanding obligations include entries
// already past their due date, with the overdue portion totalled per month.
func (s *Service) Overdue(ctx context.Context, asOf time.Time) ([]models.OverdueAlert, decimal.Decimal, error) {
	buckets, err := s.Forecast(ctx, forecast.Options{
		Months:    overdueLookbackMonths + 1,
		Reference: asOf.AddDate(0, -overdueLookbackMonths, 0),
		View:      forecast.ViewOutstanding,
	})
	if err != nil {
		return nil, decimal.Zero, err
	}

	today := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	var alerts []models.OverdueAlert
	total := decimal.Zero
	for _, b := range buckets {
		overdue := decimal.Zero
		var entries []models.ResolvedObligation
		for _, o := range b.Entries {
			if o.DueDate.Before(today) {
				overdue = overdue.Add(o.Amount)
				entries = append(entries, o)
			}
		}
		if overdue.IsPositive() {
			alerts = append(alerts, models.OverdueAlert{Month: b.Key, OverdueTotal: overdue, Entries: entries})
			total = total.Add(overdue)
		}
	}
	return alerts, total, nil
}

// CreateEntryInput carries the fields accepted for a new ledger entry
type CreateEntryInput struct {
	Direction       models.Direction     `json:"direction"`
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	RemainingAmount *decimal.Decimal     `json:"remaining_amount"`
	DueDate         *time.Time           `json:"due_date"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
}

// CreateEntry validates and stores a one-off ledger entry
func (s *Service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.LedgerEntry, error) {
	if !input.Direction.Valid() {
		return nil, fmt.Errorf("%w: direction must be income or expense", ErrInvalidInput)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	status := input.PaymentStatus
	if status == "" {
		status = models.StatusPending
	}
	switch status {
	case models.StatusPaid, models.StatusPending, models.StatusPartial:
	default:
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}
	if status == models.StatusPartial {
		if input.RemainingAmount == nil {
			return nil, fmt.Errorf("%w: partial entries require a remaining amount", ErrInvalidInput)
		}
		if !input.RemainingAmount.IsPositive() || !input.RemainingAmount.LessThan(input.Amount) {
			return nil, fmt.Errorf("%w: remaining amount must be between zero and the full amount", ErrInvalidInput)
		}
	} else if input.RemainingAmount != nil {
		return nil, fmt.Errorf("%w: remaining amount is only valid for partial entries", ErrInvalidInput)
	}

	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		Direction:     input.Direction,
		Description:   input.Description,
		Amount:        input.Amount,
		DueDate:       input.DueDate,
		PaymentStatus: status,
	}
	if input.RemainingAmount != nil {
		entry.RemainingAmount = decimal.NewNullDecimal(*input.RemainingAmount)
	}

	if err := s.store.CreateLedgerEntry(entry); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Infof("Ledger entry created: %s (%s %s)", entry.ID, entry.Direction, entry.Amount)
	return entry, nil
}

// DeleteEntry removes a ledger entry
func (s *Service) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteLedgerEntry(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Infof("Ledger entry deleted: %s", id)
	return nil
}

// CreateSeriesInput carries the fields accepted for a new recurring series
type CreateSeriesInput struct {
	Name          string           `json:"name"`
	Direction     models.Direction `json:"direction"`
	MonthlyAmount decimal.Decimal  `json:"monthly_amount"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	BillingDay    int              `json:"billing_day"`
}

// CreateSeries validates and stores a recurring series
func (s *Service) CreateSeries(ctx context.Context, input CreateSeriesInput) (*models.RecurringSeries, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !input.Direction.Valid() {
		return nil, fmt.Errorf("%w: direction must be income or expense", ErrInvalidInput)
	}
	if !input.MonthlyAmount.IsPositive() {
		return nil, fmt.Errorf("%w: monthly amount must be positive", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return nil, fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, fmt.Errorf("%w: end date precedes start date", ErrInvalidInput)
	}
	if input.BillingDay < 1 || input.BillingDay > 31 {
		return nil, fmt.Errorf("%w: billing day must be between 1 and 31", ErrInvalidInput)
	}

	series := &models.RecurringSeries{
		ID:            uuid.New(),
		Name:          input.Name,
		Direction:     input.Direction,
		MonthlyAmount: input.MonthlyAmount,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		BillingDay:    input.BillingDay,
		Active:        true,
	}
	if err := s.store.CreateSeries(series); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Infof("Recurring series created: %s (%s)", series.ID, series.Name)
	return series, nil
}

// DeactivateSeries stops a series from projecting future cycles
func (s *Service) DeactivateSeries(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeactivateSeries(id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Infof("Recurring series deactivated: %s", id)
	return nil
}

// RecordPaymentInput identifies a billing cycle and how it was settled
type RecordPaymentInput struct {
	Year   int                  `json:"year"`
	Month  time.Month           `json:"month"`
	Amount *decimal.Decimal     `json:"amount"`
	Status models.PaymentStatus `json:"status"`
}

// RecordPayment materializes one billing cycle of a series: it upserts the
// payment record and writes the linked ledger entry. Amount defaults to the
// series' monthly amount, status to paid.
func (s *Service) RecordPayment(ctx context.Context, seriesID uuid.UUID, input RecordPaymentInput) (*models.SeriesPayment, error) {
	if input.Year < 1 {
		return nil, fmt.Errorf("%w: year is required", ErrInvalidInput)
	}
	if input.Month < time.January || input.Month > time.December {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = models.StatusPaid
	}
	if status != models.StatusPaid && status != models.StatusPending {
		return nil, fmt.Errorf("%w: payment status must be paid or pending", ErrInvalidInput)
	}

	series, err := s.store.FindSeriesByID(seriesID)
	if err != nil {
		return nil, err
	}
	amount := series.MonthlyAmount
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
		}
		amount = *input.Amount
	}

	payment := &models.SeriesPayment{
		ID:       uuid.New(),
		SeriesID: series.ID,
		Year:     input.Year,
		Month:    input.Month,
		Amount:   amount,
		Status:   status,
	}
	dueDate := forecast.ResolveBillingDate(input.Year, input.Month, series.BillingDay)
	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		Direction:     series.Direction,
		Description:   series.Name,
		Amount:        amount,
		DueDate:       &dueDate,
		PaymentStatus: status,
	}

	if err := s.store.RecordSeriesPayment(payment, entry); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Infof("Series payment recorded: %s %04d-%02d (%s)", series.Name, input.Year, int(input.Month), status)
	return payment, nil
}

// SkipCycle marks one billing cycle as intentionally waived
func (s *Service) SkipCycle(ctx context.Context, seriesID uuid.UUID, year int, month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if _, err := s.store.FindSeriesByID(seriesID); err != nil {
		return err
	}
	if err := s.store.SkipSeriesCycle(seriesID, year, month); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.log.Infof("Series cycle skipped: %s %04d-%02d", seriesID, year, int(month))
	return nil
}

// RefreshForecasts drops stale cached results and warms the default views.
// The scheduler calls this daily so the first dashboard load of the day is
// served from cache.
func (s *Service) RefreshForecasts(ctx context.Context) error {
	s.invalidate(ctx)
	if _, err := s.Forecast(ctx, forecast.Options{Months: 6}); err != nil {
		return err
	}
	if _, err := s.Receivables(ctx, 12); err != nil {
		return err
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warnf("Failed to invalidate forecast cache: %v", err)
	}
}
