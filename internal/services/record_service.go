// Package services orchestrates record writes: boundary validation,
// the funding-source gate, the fuel-link side effect and change-event
// publishing. All derived values come from kharcha/internal/core.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/ledger"
)

// OdometerRegressionError rejects a new reading below the current
// maximum.
type OdometerRegressionError struct {
	Reading int64
	Current int64
}

func (e *OdometerRegressionError) Error() string {
	return fmt.Sprintf("odometer reading %d is below the current reading %d", e.Reading, e.Current)
}

// RepaymentExceedsBalanceError rejects a repayment larger than the
// loan's outstanding balance.
type RepaymentExceedsBalanceError struct {
	Remaining core.Money
}

func (e *RepaymentExceedsBalanceError) Error() string {
	return fmt.Sprintf("repayment exceeds outstanding balance %s", e.Remaining)
}

// RecordService coordinates the store and the change-event stream. The
// AMQP client is optional; without it writes are local-only.
type RecordService struct {
	store ledger.Store
	amqp  *amqp.Client
	now   func() time.Time
}

func NewRecordService(store ledger.Store, amqpClient *amqp.Client) *RecordService {
	return &RecordService{
		store: store,
		amqp:  amqpClient,
		now:   time.Now,
	}
}

// CreateExpense validates and persists a new expense or income record.
// Outgoing records pass the funding-source gate first; Fuel records
// carrying a fill-up link get a companion odometer reading afterwards.
func (s *RecordService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.Timestamp == 0 {
		e.Timestamp = s.now().UnixMilli()
	}
	if err := e.Validate(); err != nil {
		return "", err
	}

	if e.Direction == core.DirectionExpense {
		if err := s.gateOutflow(ctx, e.FundingSource, e.Amount); err != nil {
			return "", err
		}
	}

	id, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if reading, ok := core.LinkedOdometerReading(e); ok {
		// The expense is already committed; a failed link is logged
		// and corrected by the user, never rolled back.
		if _, err := s.CreateReading(ctx, reading); err != nil {
			slog.WarnContext(ctx, "Failed to save linked odometer reading",
				"expense_id", id, "odometer", reading.Odometer, "error", err)
		}
	}

	s.publishChange(ctx, string(core.KindExpense), id, "create")
	return id, nil
}

// UpdateExpense replaces the mutable fields of an existing record. The
// funding-source gate applies to new records only; edits are trusted.
func (s *RecordService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.publishChange(ctx, string(core.KindExpense), e.ID, "update")
	return nil
}

func (s *RecordService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publishChange(ctx, string(core.KindExpense), id, "delete")
	return nil
}

// CreateReading persists a new odometer reading. Readings below the
// current maximum are rejected.
func (s *RecordService) CreateReading(ctx context.Context, r core.OdometerReading) (string, error) {
	if r.Timestamp == 0 {
		r.Timestamp = s.now().UnixMilli()
	}
	if err := r.Validate(); err != nil {
		return "", err
	}

	readings, err := s.store.ListReadings(ctx)
	if err != nil {
		return "", fmt.Errorf("load readings: %w", err)
	}
	var current int64
	for _, existing := range readings {
		if existing.Odometer > current {
			current = existing.Odometer
		}
	}
	if r.Odometer < current {
		return "", &OdometerRegressionError{Reading: r.Odometer, Current: current}
	}

	id, err := s.store.CreateReading(ctx, r)
	if err != nil {
		return "", fmt.Errorf("save reading: %w", err)
	}
	s.publishChange(ctx, string(core.KindOdometer), id, "create")
	return id, nil
}

func (s *RecordService) UpdateReading(ctx context.Context, r core.OdometerReading) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateReading(ctx, r); err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	s.publishChange(ctx, string(core.KindOdometer), r.ID, "update")
	return nil
}

func (s *RecordService) DeleteReading(ctx context.Context, id string) error {
	if err := s.store.DeleteReading(ctx, id); err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	s.publishChange(ctx, string(core.KindOdometer), id, "delete")
	return nil
}

// CreateLoan persists a new loan. Lending (direction given) draws down
// a funding source and passes the gate first.
func (s *RecordService) CreateLoan(ctx context.Context, l core.Loan) (string, error) {
	if l.Timestamp == 0 {
		l.Timestamp = s.now().UnixMilli()
	}
	if err := l.Validate(); err != nil {
		return "", err
	}

	if l.Direction == core.LoanGiven {
		if err := s.gateOutflow(ctx, l.FundingSource, l.Principal); err != nil {
			return "", err
		}
	}

	id, err := s.store.CreateLoan(ctx, l)
	if err != nil {
		return "", fmt.Errorf("save loan: %w", err)
	}
	s.publishChange(ctx, string(core.KindLoan), id, "create")
	return id, nil
}

func (s *RecordService) UpdateLoan(ctx context.Context, l core.Loan) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateLoan(ctx, l); err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	s.publishChange(ctx, string(core.KindLoan), l.ID, "update")
	return nil
}

// DeleteLoan removes the loan together with its repayments.
func (s *RecordService) DeleteLoan(ctx context.Context, id string) error {
	if err := s.store.DeleteLoan(ctx, id); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	s.publishChange(ctx, string(core.KindLoan), id, "delete")
	return nil
}

// AddRepayment appends a repayment to a loan. The amount may not
// exceed the outstanding balance; repaying a taken loan additionally
// passes the funding-source gate, since the cash leaves a pot.
func (s *RecordService) AddRepayment(ctx context.Context, loanID string, r core.Repayment) error {
	if err := r.Validate(); err != nil {
		return err
	}

	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return fmt.Errorf("load loans: %w", err)
	}
	var parent *core.Loan
	for i := range loans {
		if loans[i].ID == loanID {
			parent = &loans[i]
			break
		}
	}
	if parent == nil {
		return ledger.ErrNotFound
	}

	balance := parent.Balance()
	if r.Amount.Cents > balance.Cents {
		return &RepaymentExceedsBalanceError{Remaining: balance}
	}

	if parent.Direction == core.LoanTaken && r.FundingSource != "" {
		if err := s.gateOutflow(ctx, r.FundingSource, r.Amount); err != nil {
			return err
		}
	}

	if err := s.store.AppendRepayment(ctx, loanID, r); err != nil {
		return fmt.Errorf("append repayment: %w", err)
	}
	s.publishChange(ctx, string(core.KindLoan), loanID, "update")
	return nil
}

func (s *RecordService) VehicleSettings(ctx context.Context) (core.VehicleSettings, error) {
	return s.store.VehicleSettings(ctx)
}

func (s *RecordService) SaveVehicleSettings(ctx context.Context, settings core.VehicleSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	if err := s.store.SaveVehicleSettings(ctx, settings); err != nil {
		return fmt.Errorf("save vehicle settings: %w", err)
	}
	s.publishChange(ctx, "settings", "vehicle", "update")
	return nil
}

// Snapshot returns the three record collections as the store last
// delivered them.
func (s *RecordService) Snapshot(ctx context.Context) ([]core.Expense, []core.OdometerReading, []core.Loan, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load expenses: %w", err)
	}
	readings, err := s.store.ListReadings(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load readings: %w", err)
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load loans: %w", err)
	}
	return expenses, readings, loans, nil
}

// Stats recomputes the dashboard statistics from fresh snapshots.
func (s *RecordService) Stats(ctx context.Context) (core.Stats, error) {
	expenses, readings, loans, err := s.Snapshot(ctx)
	if err != nil {
		return core.Stats{}, err
	}
	return core.ComputeStats(expenses, readings, loans, s.now()), nil
}

// SourceBalances recomputes per-source balances from fresh snapshots.
func (s *RecordService) SourceBalances(ctx context.Context) (map[string]core.Money, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	return core.ComputeSourceBalances(expenses, loans), nil
}

// History returns the grouped combined history limited to the first
// limit items.
func (s *RecordService) History(ctx context.Context, limit int) ([]core.HistoryGroup, error) {
	expenses, readings, loans, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return core.BuildHistory(expenses, readings, loans, limit), nil
}

func (s *RecordService) gateOutflow(ctx context.Context, source string, amount core.Money) error {
	balances, err := s.SourceBalances(ctx)
	if err != nil {
		return err
	}
	return core.ValidateOutflow(source, amount, balances)
}

func (s *RecordService) publishChange(ctx context.Context, kind, id, op string) {
	if s.amqp == nil {
		return
	}
	// Change events are best-effort; the write already succeeded.
	if err := s.amqp.PublishRecordChanged(ctx, kind, id, op); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"kind", kind, "id", id, "op", op, "error", err)
	}
}

// Close releases the store and event-stream resources.
func (s *RecordService) Close() error {
	var errs []error

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if s.amqp != nil {
		if err := s.amqp.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}
	return nil
}
