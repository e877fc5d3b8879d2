package core

import (
	"errors"
	"testing"
)

func TestComputeSourceBalances(t *testing.T) {
	expenses := []Expense{
		{Direction: DirectionIncome, Category: "Salary", Amount: Money{Cents: 500000}},
		{Direction: DirectionExpense, Category: "Groceries", FundingSource: "Salary", Amount: Money{Cents: 200000}},
	}

	balances := ComputeSourceBalances(expenses, nil)
	if got := balances["Salary"].Cents; got != 300000 {
		t.Errorf("Salary balance = %d, want 300000", got)
	}
}

func TestComputeSourceBalancesExplicitIncomeSource(t *testing.T) {
	expenses := []Expense{
		{Direction: DirectionIncome, Category: "Other", FundingSource: "Cash", Amount: Money{Cents: 10000}},
	}
	balances := ComputeSourceBalances(expenses, nil)
	if got := balances["Cash"].Cents; got != 10000 {
		t.Errorf("Cash balance = %d, want 10000", got)
	}
	if _, ok := balances["Other"]; ok {
		t.Error("category must not be credited when an explicit source is set")
	}
}

func TestComputeSourceBalancesLoans(t *testing.T) {
	loans := []Loan{
		{
			// Lending draws down the source, repayments flow back in.
			Direction:     LoanGiven,
			Principal:     Money{Cents: 100000},
			FundingSource: "Savings",
			Repayments: []Repayment{
				{Amount: Money{Cents: 30000}, FundingSource: "Savings"},
			},
		},
		{
			// Borrowing has no source effect at creation; repaying
			// debits the source the repayment comes from.
			Direction: LoanTaken,
			Principal: Money{Cents: 50000},
			Repayments: []Repayment{
				{Amount: Money{Cents: 20000}, FundingSource: "Salary"},
			},
		},
	}

	balances := ComputeSourceBalances(nil, loans)
	if got := balances["Savings"].Cents; got != -70000 {
		t.Errorf("Savings balance = %d, want -70000", got)
	}
	if got := balances["Salary"].Cents; got != -20000 {
		t.Errorf("Salary balance = %d, want -20000", got)
	}
}

func TestValidateOutflow(t *testing.T) {
	expenses := []Expense{
		{Direction: DirectionIncome, Category: "Salary", Amount: Money{Cents: 500000}},
		{Direction: DirectionExpense, Category: "Groceries", FundingSource: "Salary", Amount: Money{Cents: 200000}},
	}
	balances := ComputeSourceBalances(expenses, nil)

	if err := ValidateOutflow("Salary", Money{Cents: 300000}, balances); err != nil {
		t.Fatalf("exact balance should pass, got %v", err)
	}

	err := ValidateOutflow("Salary", Money{Cents: 350000}, balances)
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientFundsError, got %v", err)
	}
	if insufficient.Source != "Salary" || insufficient.Available.Cents != 300000 {
		t.Errorf("error = %+v, want Salary/300000", insufficient)
	}

	// Unknown sources start at zero.
	err = ValidateOutflow("Wallet", Money{Cents: 1}, balances)
	if !errors.As(err, &insufficient) || insufficient.Available.Cents != 0 {
		t.Errorf("unknown source: got %v, want available 0", err)
	}
}
