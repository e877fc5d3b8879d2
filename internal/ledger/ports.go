package ledger

import (
	"context"
	"errors"

	"kharcha/internal/core"
)

// ErrNotFound is returned for lookups and mutations on unknown IDs.
var ErrNotFound = errors.New("record not found")

// Ports for outbound record stores. List methods return full-collection
// snapshots; the caller never mutates the returned slices.
type (
	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (id string, err error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	OdometerStore interface {
		ListReadings(ctx context.Context) ([]core.OdometerReading, error)
		CreateReading(ctx context.Context, r core.OdometerReading) (id string, err error)
		UpdateReading(ctx context.Context, r core.OdometerReading) error
		DeleteReading(ctx context.Context, id string) error
	}

	// LoanStore lists loans with their repayments attached. Repayments
	// are append-only; deleting a loan discards them.
	LoanStore interface {
		ListLoans(ctx context.Context) ([]core.Loan, error)
		CreateLoan(ctx context.Context, l core.Loan) (id string, err error)
		UpdateLoan(ctx context.Context, l core.Loan) error
		DeleteLoan(ctx context.Context, id string) error
		AppendRepayment(ctx context.Context, loanID string, r core.Repayment) error
	}

	SettingsStore interface {
		VehicleSettings(ctx context.Context) (core.VehicleSettings, error)
		SaveVehicleSettings(ctx context.Context, s core.VehicleSettings) error
	}
)

// Store is the full persistence surface the orchestration layer needs.
type Store interface {
	ExpenseStore
	OdometerStore
	LoanStore
	SettingsStore
}
