package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// Amounts travel as decimal strings ("1234.50") and are converted to
// paise at the boundary. Dates are ISO "2006-01-02".

type expenseRequest struct {
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Direction     string `json:"direction"`
	FundingSource string `json:"funding_source"`
	Note          string `json:"note"`

	FuelPrice      string `json:"fuel_price,omitempty"`
	FuelVolume     string `json:"fuel_volume,omitempty"`
	LinkedOdometer int64  `json:"linked_odometer,omitempty"`
	FuelStatus     string `json:"fuel_status,omitempty"`
}

func (req expenseRequest) toDomain() (core.Expense, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("amount: %w", err)
	}

	e := core.Expense{
		Date:           date,
		Amount:         amount,
		Category:       strings.TrimSpace(req.Category),
		Direction:      core.Direction(req.Direction),
		FundingSource:  strings.TrimSpace(req.FundingSource),
		Note:           strings.TrimSpace(req.Note),
		LinkedOdometer: req.LinkedOdometer,
		FuelStatus:     core.FuelStatus(req.FuelStatus),
	}

	if req.FuelPrice != "" {
		price, err := parseAmount(req.FuelPrice)
		if err != nil {
			return core.Expense{}, fmt.Errorf("fuel_price: %w", err)
		}
		e.FuelPrice = price
	}
	if req.FuelVolume != "" {
		volume, err := decimal.NewFromString(req.FuelVolume)
		if err != nil {
			return core.Expense{}, fmt.Errorf("fuel_volume: %w", core.ErrInvalidAmount)
		}
		e.FuelVolume = volume
	}

	return e, nil
}

type readingRequest struct {
	Date       string `json:"date"`
	Odometer   int64  `json:"odometer"`
	FuelStatus string `json:"fuel_status,omitempty"`
}

func (req readingRequest) toDomain() (core.OdometerReading, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.OdometerReading{}, err
	}
	return core.OdometerReading{
		Date:       date,
		Odometer:   req.Odometer,
		FuelStatus: core.FuelStatus(req.FuelStatus),
	}, nil
}

type loanRequest struct {
	Date          string `json:"date"`
	DueDate       string `json:"due_date,omitempty"`
	Direction     string `json:"direction"`
	Counterparty  string `json:"counterparty"`
	Principal     string `json:"principal"`
	FundingSource string `json:"funding_source,omitempty"`
	Note          string `json:"note,omitempty"`
}

func (req loanRequest) toDomain() (core.Loan, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Loan{}, err
	}
	principal, err := parseAmount(req.Principal)
	if err != nil {
		return core.Loan{}, fmt.Errorf("principal: %w", err)
	}

	l := core.Loan{
		Date:          date,
		Direction:     core.LoanDirection(req.Direction),
		Counterparty:  strings.TrimSpace(req.Counterparty),
		Principal:     principal,
		FundingSource: strings.TrimSpace(req.FundingSource),
		Note:          strings.TrimSpace(req.Note),
	}
	if req.DueDate != "" {
		due, err := core.ParseDate(req.DueDate)
		if err != nil {
			return core.Loan{}, fmt.Errorf("due_date: %w", err)
		}
		l.DueDate = due
	}
	return l, nil
}

type repaymentRequest struct {
	Date          string `json:"date"`
	Amount        string `json:"amount"`
	Note          string `json:"note,omitempty"`
	FundingSource string `json:"funding_source,omitempty"`
}

func (req repaymentRequest) toDomain() (core.Repayment, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Repayment{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Repayment{}, fmt.Errorf("amount: %w", err)
	}
	return core.Repayment{
		Date:          date,
		Amount:        amount,
		Note:          strings.TrimSpace(req.Note),
		FundingSource: strings.TrimSpace(req.FundingSource),
	}, nil
}

type vehicleSettingsRequest struct {
	TankCapacity    string `json:"tank_capacity"`
	ReserveCapacity string `json:"reserve_capacity"`
}

func (req vehicleSettingsRequest) toDomain() (core.VehicleSettings, error) {
	tank, err := decimal.NewFromString(req.TankCapacity)
	if err != nil {
		return core.VehicleSettings{}, fmt.Errorf("tank_capacity: %w", core.ErrInvalidCapacity)
	}
	reserve, err := decimal.NewFromString(req.ReserveCapacity)
	if err != nil {
		return core.VehicleSettings{}, fmt.Errorf("reserve_capacity: %w", core.ErrInvalidCapacity)
	}
	return core.VehicleSettings{TankCapacity: tank, ReserveCapacity: reserve}, nil
}

func parseAmount(s string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(strings.TrimSpace(s))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// decodeBody decodes a JSON request body into dst, rejecting unknown
// fields so client typos surface as 400s instead of silent drops.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
