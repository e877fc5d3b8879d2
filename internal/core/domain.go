package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"

	LoanTaken LoanDirection = "taken"
	LoanGiven LoanDirection = "given"

	FuelStatusMain    FuelStatus = "Main"
	FuelStatusReserve FuelStatus = "Reserve"

	CategoryFuel = "Fuel"
)

type (
	// Direction tells whether money left or entered the wallet.
	Direction string

	// LoanDirection tells who the debtor is: taken = the user owes,
	// given = the user is owed.
	LoanDirection string

	// FuelStatus is the tank state recorded alongside an odometer reading.
	FuelStatus string

	// Date is a calendar day without time-of-day resolution. Records
	// sharing a Date are ordered by their creation Timestamp instead.
	Date struct {
		time.Time
	}

	// Expense is a single money movement, outgoing or incoming.
	Expense struct {
		ID            string
		Date          Date
		Timestamp     int64 // creation instant, unix milliseconds
		Amount        Money
		Category      string
		Direction     Direction
		FundingSource string // required for outgoing records
		Note          string

		// Present only for Fuel records.
		FuelPrice  Money           // per litre, zero when not supplied
		FuelVolume decimal.Decimal // litres, zero when not supplied

		// Fill-up link, supplied at creation time only. A non-zero
		// LinkedOdometer plus a FuelStatus triggers creation of a
		// companion odometer reading (see LinkedOdometerReading).
		LinkedOdometer int64
		FuelStatus     FuelStatus
	}

	// OdometerReading is a point-in-time odometer value.
	OdometerReading struct {
		ID         string
		Date       Date
		Timestamp  int64
		Odometer   int64
		FuelStatus FuelStatus // optional
		Distance   int64      // legacy field, kept at zero for new records
	}

	// Repayment is a partial return of a loan's principal. Repayments
	// are append-only; they are never edited or removed.
	Repayment struct {
		ID            string
		Amount        Money
		Date          Date
		Note          string
		FundingSource string
	}

	// Loan is money lent to or borrowed from a counterparty.
	Loan struct {
		ID            string
		Date          Date // origination date
		DueDate       Date // optional
		Timestamp     int64
		Direction     LoanDirection
		Counterparty  string
		Principal     Money
		FundingSource string // required when Direction is given
		Note          string
		Repayments    []Repayment
	}
)

// ExpenseCategories is the fixed category set for outgoing records.
var ExpenseCategories = []string{
	"Groceries",
	"Vegetables/Fruits",
	"Milk & Dairy",
	"Dining Out",
	CategoryFuel,
	"Maintenance",
	"Service",
	"Insurance",
	"Toll",
	"Rent",
	"EMI",
	"Bills (Elec/Water)",
	"Medical",
	"Shopping",
	"Other",
}

// IncomeCategories is the fixed category set for incoming records.
// When an income record carries no explicit funding source its category
// name doubles as the source it credits.
var IncomeCategories = []string{
	"Salary",
	"Business",
	"Savings",
	"Cash",
	"Other",
}

// vehicleCategories are the expense categories counted as vehicle
// running cost.
var vehicleCategories = map[string]bool{
	CategoryFuel: true,
	"Maintenance": true,
	"Service":     true,
	"Insurance":   true,
	"Toll":        true,
}

// IsVehicleCategory reports whether the category counts toward vehicle
// running cost.
func IsVehicleCategory(category string) bool {
	return vehicleCategories[category]
}

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrMissingFundingSource = errors.New("missing funding source")
	ErrInvalidOdometer      = errors.New("invalid odometer reading")
	ErrInvalidFuelStatus    = errors.New("invalid fuel status")
	ErrEmptyCounterparty    = errors.New("empty counterparty name")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date formatted as 2006-01-02.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Display returns the human-readable form used for history grouping.
func (d Date) Display() string {
	return d.Format("02 Jan 2006")
}

// SameMonth reports whether d falls in the calendar month of t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == t.Month()
}

func (dir Direction) Validate() error {
	switch dir {
	case DirectionExpense, DirectionIncome:
		return nil
	}
	return ErrInvalidDirection
}

func (fs FuelStatus) Validate() error {
	switch fs {
	case FuelStatusMain, FuelStatusReserve:
		return nil
	}
	return ErrInvalidFuelStatus
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Direction.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if !knownCategory(e.Direction, e.Category) {
		return ErrUnknownCategory
	}
	if e.Direction == DirectionExpense && strings.TrimSpace(e.FundingSource) == "" {
		return ErrMissingFundingSource
	}
	if e.LinkedOdometer < 0 {
		return ErrInvalidOdometer
	}
	if e.LinkedOdometer > 0 {
		if err := e.FuelStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// EffectiveFuelVolume returns the litres bought for a Fuel record: the
// recorded volume when supplied, otherwise amount divided by price per
// litre. The second return is false when neither is derivable.
func (e Expense) EffectiveFuelVolume() (decimal.Decimal, bool) {
	if e.Category != CategoryFuel {
		return decimal.Zero, false
	}
	if !e.FuelVolume.IsZero() {
		return e.FuelVolume, true
	}
	if e.FuelPrice.Cents > 0 && e.Amount.Cents > 0 {
		v := decimal.NewFromInt(e.Amount.Cents).
			Div(decimal.NewFromInt(e.FuelPrice.Cents)).
			Round(2)
		return v, true
	}
	return decimal.Zero, false
}

func (r OdometerReading) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.Odometer < 0 {
		return ErrInvalidOdometer
	}
	if r.FuelStatus != "" {
		if err := r.FuelStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (dir LoanDirection) Validate() error {
	switch dir {
	case LoanTaken, LoanGiven:
		return nil
	}
	return ErrInvalidDirection
}

func (l Loan) Validate() error {
	if err := l.Date.Validate(); err != nil {
		return err
	}
	if err := l.Direction.Validate(); err != nil {
		return err
	}
	if err := l.Principal.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(l.Counterparty) == "" {
		return ErrEmptyCounterparty
	}
	if l.Direction == LoanGiven && strings.TrimSpace(l.FundingSource) == "" {
		return ErrMissingFundingSource
	}
	return nil
}

func (r Repayment) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	return r.Amount.Validate()
}

// TotalPaid is the sum of all repayment amounts.
func (l Loan) TotalPaid() Money {
	var cents int64
	for _, r := range l.Repayments {
		cents += r.Amount.Cents
	}
	return Money{Cents: cents}
}

// Balance is the outstanding amount: principal minus repayments. It can
// go to or below zero when repayments meet or exceed the principal.
func (l Loan) Balance() Money {
	return Money{Cents: l.Principal.Cents - l.TotalPaid().Cents}
}

// Settled reports whether cumulative repayments cover the principal.
func (l Loan) Settled() bool {
	return l.Balance().Cents <= 0
}

func knownCategory(dir Direction, category string) bool {
	set := ExpenseCategories
	if dir == DirectionIncome {
		set = IncomeCategories
	}
	for _, c := range set {
		if c == category {
			return true
		}
	}
	return false
}
