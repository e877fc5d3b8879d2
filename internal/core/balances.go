package core

import "fmt"

// InsufficientFundsError rejects an outgoing record whose amount
// exceeds the available balance of its funding source. It is advisory:
// the check runs before the write and nothing stops a concurrent writer
// from passing the same check against a stale balance.
type InsufficientFundsError struct {
	Source    string
	Available Money
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %s", e.Source, e.Available)
}

// ComputeSourceBalances computes the available balance of every named
// funding source as inflows minus outflows across both record types.
//
// Rules:
//   - income records credit their explicit funding source, falling back
//     to the category name (income categories double as sources);
//   - outgoing records debit their funding source;
//   - a given loan debits the lender's source at creation; a taken loan
//     has no source effect at creation;
//   - each repayment moves cash in the opposite sense of its parent:
//     repaying a taken loan debits the repayment's source, receiving a
//     repayment on a given loan credits it.
func ComputeSourceBalances(expenses []Expense, loans []Loan) map[string]Money {
	balances := make(map[string]Money)

	credit := func(source string, cents int64) {
		if source == "" {
			return
		}
		b := balances[source]
		b.Cents += cents
		balances[source] = b
	}

	for _, e := range expenses {
		switch e.Direction {
		case DirectionIncome:
			source := e.FundingSource
			if source == "" {
				source = e.Category
			}
			credit(source, e.Amount.Cents)
		case DirectionExpense:
			credit(e.FundingSource, -e.Amount.Cents)
		}
	}

	for _, l := range loans {
		if l.Direction == LoanGiven {
			credit(l.FundingSource, -l.Principal.Cents)
		}
		for _, r := range l.Repayments {
			switch l.Direction {
			case LoanTaken:
				credit(r.FundingSource, -r.Amount.Cents)
			case LoanGiven:
				credit(r.FundingSource, r.Amount.Cents)
			}
		}
	}

	return balances
}

// ValidateOutflow gates a new outgoing record against the current
// balance of its funding source. An unknown source has balance zero.
// Returns nil when the amount is covered, otherwise a structured
// *InsufficientFundsError carrying the available balance.
func ValidateOutflow(source string, amount Money, balances map[string]Money) error {
	available := balances[source]
	if amount.Cents > available.Cents {
		return &InsufficientFundsError{Source: source, Available: available}
	}
	return nil
}
