package storage

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"kharcha/internal/core"
	"kharcha/internal/ledger"
)

// RepositoryTestSuite exercises the SQLite store on an in-memory database.
type RepositoryTestSuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(s.T(), err, "failed to open test database")
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositoryTestSuite) TearDownTest() {
	if s.repo != nil {
		s.repo.Close()
	}
}

func (s *RepositoryTestSuite) TestExpenseRoundTrip() {
	e := core.Expense{
		Date:          core.NewDate(2024, 1, 5),
		Timestamp:     1704412800000,
		Amount:        core.Money{Cents: 50000},
		Category:      core.CategoryFuel,
		Direction:     core.DirectionExpense,
		FundingSource: "Cash",
		Note:          "full tank",
		FuelPrice:     core.Money{Cents: 10450},
		FuelVolume:    decimal.RequireFromString("4.78"),
	}

	id, err := s.repo.CreateExpense(s.ctx, e)
	require.NoError(s.T(), err)
	require.NotEmpty(s.T(), id)

	expenses, err := s.repo.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 1)

	got := expenses[0]
	assert.Equal(s.T(), id, got.ID)
	assert.Equal(s.T(), "2024-01-05", got.Date.ISO())
	assert.Equal(s.T(), int64(50000), got.Amount.Cents)
	assert.Equal(s.T(), core.CategoryFuel, got.Category)
	assert.Equal(s.T(), "Cash", got.FundingSource)
	assert.True(s.T(), got.FuelVolume.Equal(decimal.RequireFromString("4.78")))
}

func (s *RepositoryTestSuite) TestExpenseUpdateAndDelete() {
	e := core.Expense{
		Date:          core.NewDate(2024, 1, 5),
		Timestamp:     1,
		Amount:        core.Money{Cents: 10000},
		Category:      "Groceries",
		Direction:     core.DirectionExpense,
		FundingSource: "Salary",
	}
	id, err := s.repo.CreateExpense(s.ctx, e)
	require.NoError(s.T(), err)

	e.ID = id
	e.Amount = core.Money{Cents: 12000}
	e.Note = "corrected"
	require.NoError(s.T(), s.repo.UpdateExpense(s.ctx, e))

	expenses, err := s.repo.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), expenses, 1)
	assert.Equal(s.T(), int64(12000), expenses[0].Amount.Cents)
	assert.Equal(s.T(), "corrected", expenses[0].Note)

	require.NoError(s.T(), s.repo.DeleteExpense(s.ctx, id))
	expenses, err = s.repo.ListExpenses(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), expenses)

	assert.ErrorIs(s.T(), s.repo.DeleteExpense(s.ctx, id), ledger.ErrNotFound)
}

func (s *RepositoryTestSuite) TestReadingRoundTrip() {
	r := core.OdometerReading{
		Date:       core.NewDate(2024, 1, 5),
		Timestamp:  2,
		Odometer:   1200,
		FuelStatus: core.FuelStatusMain,
	}
	id, err := s.repo.CreateReading(s.ctx, r)
	require.NoError(s.T(), err)

	readings, err := s.repo.ListReadings(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), readings, 1)
	assert.Equal(s.T(), id, readings[0].ID)
	assert.Equal(s.T(), int64(1200), readings[0].Odometer)
	assert.Equal(s.T(), core.FuelStatusMain, readings[0].FuelStatus)

	assert.ErrorIs(s.T(), s.repo.UpdateReading(s.ctx, core.OdometerReading{ID: "missing", Date: r.Date}), ledger.ErrNotFound)
}

func (s *RepositoryTestSuite) TestLoanWithRepayments() {
	l := core.Loan{
		Date:         core.NewDate(2024, 1, 1),
		DueDate:      core.NewDate(2024, 6, 1),
		Timestamp:    3,
		Direction:    core.LoanTaken,
		Counterparty: "Ravi",
		Principal:    core.Money{Cents: 100000},
	}
	id, err := s.repo.CreateLoan(s.ctx, l)
	require.NoError(s.T(), err)

	require.NoError(s.T(), s.repo.AppendRepayment(s.ctx, id, core.Repayment{
		Amount:        core.Money{Cents: 40000},
		Date:          core.NewDate(2024, 2, 1),
		FundingSource: "Salary",
	}))
	require.NoError(s.T(), s.repo.AppendRepayment(s.ctx, id, core.Repayment{
		Amount: core.Money{Cents: 10000},
		Date:   core.NewDate(2024, 3, 1),
	}))

	loans, err := s.repo.ListLoans(s.ctx)
	require.NoError(s.T(), err)
	require.Len(s.T(), loans, 1)

	got := loans[0]
	assert.Equal(s.T(), "2024-06-01", got.DueDate.ISO())
	require.Len(s.T(), got.Repayments, 2)
	// Date order is preserved.
	assert.Equal(s.T(), int64(40000), got.Repayments[0].Amount.Cents)
	assert.Equal(s.T(), int64(50000), got.TotalPaid().Cents)
	assert.Equal(s.T(), int64(50000), got.Balance().Cents)
	assert.False(s.T(), got.Settled())

	assert.ErrorIs(s.T(), s.repo.AppendRepayment(s.ctx, "missing", core.Repayment{
		Amount: core.Money{Cents: 1},
		Date:   core.NewDate(2024, 3, 1),
	}), ledger.ErrNotFound)
}

func (s *RepositoryTestSuite) TestDeleteLoanDiscardsRepayments() {
	id, err := s.repo.CreateLoan(s.ctx, core.Loan{
		Date:         core.NewDate(2024, 1, 1),
		Direction:    core.LoanGiven,
		Counterparty: "Anu",
		Principal:    core.Money{Cents: 50000},
		FundingSource: "Savings",
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), s.repo.AppendRepayment(s.ctx, id, core.Repayment{
		Amount: core.Money{Cents: 20000},
		Date:   core.NewDate(2024, 2, 1),
	}))

	require.NoError(s.T(), s.repo.DeleteLoan(s.ctx, id))

	loans, err := s.repo.ListLoans(s.ctx)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), loans)

	var count int
	require.NoError(s.T(), s.repo.db.QueryRow(`SELECT COUNT(1) FROM repayments`).Scan(&count))
	assert.Zero(s.T(), count, "cascade should remove repayments")
}

func (s *RepositoryTestSuite) TestVehicleSettings() {
	// Unset settings read back as the zero value.
	settings, err := s.repo.VehicleSettings(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), settings.TankCapacity.IsZero())

	want := core.VehicleSettings{
		TankCapacity:    decimal.RequireFromString("12"),
		ReserveCapacity: decimal.RequireFromString("1.5"),
	}
	require.NoError(s.T(), s.repo.SaveVehicleSettings(s.ctx, want))

	settings, err = s.repo.VehicleSettings(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), settings.TankCapacity.Equal(want.TankCapacity))
	assert.True(s.T(), settings.ReserveCapacity.Equal(want.ReserveCapacity))

	// Saving again overwrites the single row.
	want.ReserveCapacity = decimal.RequireFromString("2")
	require.NoError(s.T(), s.repo.SaveVehicleSettings(s.ctx, want))
	settings, err = s.repo.VehicleSettings(s.ctx)
	require.NoError(s.T(), err)
	assert.True(s.T(), settings.ReserveCapacity.Equal(decimal.RequireFromString("2")))
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}
