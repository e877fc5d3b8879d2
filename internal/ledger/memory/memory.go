// Package memory provides an in-memory ledger.Store. It backs the
// default zero-configuration mode and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"kharcha/internal/core"
	"kharcha/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	expenses []core.Expense
	readings []core.OdometerReading
	loans    []core.Loan
	settings core.VehicleSettings
}

func New() *Store {
	return &Store{}
}

var _ ledger.Store = (*Store)(nil)

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...), nil
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) UpdateExpense(_ context.Context, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == e.ID {
			s.expenses[i] = e
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListReadings(_ context.Context) ([]core.OdometerReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.OdometerReading(nil), s.readings...), nil
}

func (s *Store) CreateReading(_ context.Context, r core.OdometerReading) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.readings = append(s.readings, r)
	return r.ID, nil
}

func (s *Store) UpdateReading(_ context.Context, r core.OdometerReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.readings {
		if s.readings[i].ID == r.ID {
			s.readings[i] = r
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteReading(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.readings {
		if s.readings[i].ID == id {
			s.readings = append(s.readings[:i], s.readings[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListLoans(_ context.Context) ([]core.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loans := make([]core.Loan, len(s.loans))
	for i, l := range s.loans {
		l.Repayments = append([]core.Repayment(nil), l.Repayments...)
		loans[i] = l
	}
	return loans, nil
}

func (s *Store) CreateLoan(_ context.Context, l core.Loan) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Repayments = append([]core.Repayment(nil), l.Repayments...)
	s.loans = append(s.loans, l)
	return l.ID, nil
}

func (s *Store) UpdateLoan(_ context.Context, l core.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.loans {
		if s.loans[i].ID == l.ID {
			// Repayments are append-only; edits never replace them.
			l.Repayments = s.loans[i].Repayments
			s.loans[i] = l
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) DeleteLoan(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.loans {
		if s.loans[i].ID == id {
			s.loans = append(s.loans[:i], s.loans[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) AppendRepayment(_ context.Context, loanID string, r core.Repayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.loans {
		if s.loans[i].ID == loanID {
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			s.loans[i].Repayments = append(s.loans[i].Repayments, r)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) VehicleSettings(_ context.Context) (core.VehicleSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings, nil
}

func (s *Store) SaveVehicleSettings(_ context.Context, settings core.VehicleSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
