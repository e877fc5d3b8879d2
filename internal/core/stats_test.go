package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestComputeStatsEmpty(t *testing.T) {
	s := ComputeStats(nil, nil, nil, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	if s.CurrentOdometer != 0 || s.InitialOdometer != 0 || s.TotalDistance != 0 {
		t.Errorf("odometer span not zero: %+v", s)
	}
	if s.NeedsMoreData {
		t.Error("NeedsMoreData should be false with no readings")
	}
	if s.VehicleSpend.Cents != 0 || s.MonthlySpend.Cents != 0 {
		t.Errorf("spend not zero: %+v", s)
	}
	if s.CostPerKm.Valid || s.AverageMileage.Valid {
		t.Error("metrics should be not-computable for empty input")
	}
	if s.CostPerKm.String() != MetricPlaceholder {
		t.Errorf("CostPerKm.String() = %q", s.CostPerKm.String())
	}
	if s.OwedByUser.Cents != 0 || s.OwedToUser.Cents != 0 || s.NetBalance.Cents != 0 {
		t.Errorf("loan position not zero: %+v", s)
	}
}

func TestComputeStatsSingleReading(t *testing.T) {
	readings := []OdometerReading{{Odometer: 1000, Date: NewDate(2024, 1, 1)}}
	s := ComputeStats(nil, readings, nil, time.Now())

	if !s.NeedsMoreData {
		t.Error("NeedsMoreData should be true with exactly one reading")
	}
	if s.TotalDistance != 0 {
		t.Errorf("TotalDistance = %d, want 0", s.TotalDistance)
	}
	if s.CurrentOdometer != 1000 {
		t.Errorf("CurrentOdometer = %d, want 1000", s.CurrentOdometer)
	}
}

func TestComputeStatsVehicle(t *testing.T) {
	expenses := []Expense{{
		Date:          NewDate(2024, 1, 5),
		Amount:        Money{Cents: 50000},
		Category:      CategoryFuel,
		Direction:     DirectionExpense,
		FundingSource: "Cash",
	}}
	readings := []OdometerReading{
		{Odometer: 1000, Date: NewDate(2024, 1, 1)},
		{Odometer: 1100, Date: NewDate(2024, 1, 5)},
	}
	s := ComputeStats(expenses, readings, nil, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))

	if s.TotalDistance != 100 {
		t.Errorf("TotalDistance = %d, want 100", s.TotalDistance)
	}
	if s.VehicleSpend.Cents != 50000 {
		t.Errorf("VehicleSpend = %d, want 50000", s.VehicleSpend.Cents)
	}
	if !s.CostPerKm.Valid || !s.CostPerKm.Value.Equal(decimal.RequireFromString("5")) {
		t.Errorf("CostPerKm = %s (valid=%v), want 5.00", s.CostPerKm.Value, s.CostPerKm.Valid)
	}
	if s.NeedsMoreData {
		t.Error("NeedsMoreData should be false with two readings")
	}
	// No fuel volume recorded anywhere, so mileage stays not computable.
	if s.AverageMileage.Valid {
		t.Error("AverageMileage should be not-computable without fuel volume")
	}
}

func TestComputeStatsAverageMileage(t *testing.T) {
	expenses := []Expense{{
		Date:          NewDate(2024, 1, 5),
		Amount:        Money{Cents: 50000},
		Category:      CategoryFuel,
		Direction:     DirectionExpense,
		FundingSource: "Cash",
		FuelVolume:    decimal.RequireFromString("4"),
	}}
	readings := []OdometerReading{
		{Odometer: 1000, Date: NewDate(2024, 1, 1)},
		{Odometer: 1210, Date: NewDate(2024, 1, 5)},
	}
	s := ComputeStats(expenses, readings, nil, time.Now())

	// 210 km on 4 litres, rounded to one decimal.
	if !s.AverageMileage.Valid || !s.AverageMileage.Value.Equal(decimal.RequireFromString("52.5")) {
		t.Errorf("AverageMileage = %s (valid=%v), want 52.5", s.AverageMileage.Value, s.AverageMileage.Valid)
	}
}

func TestComputeStatsMonthlySpend(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	expenses := []Expense{
		{Date: NewDate(2024, 1, 5), Amount: Money{Cents: 10000}, Category: "Groceries", Direction: DirectionExpense, FundingSource: "Salary"},
		{Date: NewDate(2024, 1, 28), Amount: Money{Cents: 20000}, Category: "Shopping", Direction: DirectionExpense, FundingSource: "Salary"},
		{Date: NewDate(2023, 12, 31), Amount: Money{Cents: 40000}, Category: "Rent", Direction: DirectionExpense, FundingSource: "Salary"},
		// Income in the same month must not count as spend.
		{Date: NewDate(2024, 1, 10), Amount: Money{Cents: 500000}, Category: "Salary", Direction: DirectionIncome},
	}
	s := ComputeStats(expenses, nil, nil, now)

	if s.MonthlySpend.Cents != 30000 {
		t.Errorf("MonthlySpend = %d, want 30000", s.MonthlySpend.Cents)
	}
}

func TestComputeStatsLoanPosition(t *testing.T) {
	loans := []Loan{
		{Direction: LoanTaken, Principal: Money{Cents: 100000}, Repayments: []Repayment{{Amount: Money{Cents: 40000}}}},
		{Direction: LoanGiven, Principal: Money{Cents: 200000}},
		// Settled loans contribute zero.
		{Direction: LoanTaken, Principal: Money{Cents: 100000}, Repayments: []Repayment{{Amount: Money{Cents: 100000}}}},
	}
	s := ComputeStats(nil, nil, loans, time.Now())

	if s.OwedByUser.Cents != 60000 {
		t.Errorf("OwedByUser = %d, want 60000", s.OwedByUser.Cents)
	}
	if s.OwedToUser.Cents != 200000 {
		t.Errorf("OwedToUser = %d, want 200000", s.OwedToUser.Cents)
	}
	if s.NetBalance.Cents != 140000 {
		t.Errorf("NetBalance = %d, want 140000", s.NetBalance.Cents)
	}
	// Identity from the definition: owedBy + net == owedTo.
	if s.OwedByUser.Cents+s.NetBalance.Cents != s.OwedToUser.Cents {
		t.Error("net position identity violated")
	}
}

func TestComputeStatsIdempotent(t *testing.T) {
	expenses := []Expense{{
		Date:          NewDate(2024, 1, 5),
		Amount:        Money{Cents: 50000},
		Category:      CategoryFuel,
		Direction:     DirectionExpense,
		FundingSource: "Cash",
		FuelVolume:    decimal.RequireFromString("4.5"),
	}}
	readings := []OdometerReading{
		{Odometer: 1000, Date: NewDate(2024, 1, 1)},
		{Odometer: 1100, Date: NewDate(2024, 1, 5)},
	}
	loans := []Loan{{Direction: LoanGiven, Principal: Money{Cents: 50000}, FundingSource: "Savings"}}
	now := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	a := ComputeStats(expenses, readings, loans, now)
	b := ComputeStats(expenses, readings, loans, now)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("ComputeStats not idempotent:\n%+v\n%+v", a, b)
	}
}
