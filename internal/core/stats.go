package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricPlaceholder is rendered for metrics that cannot be computed.
const MetricPlaceholder = "---"

// Metric is a derived figure that is not always computable, e.g. cost
// per km before any distance has been driven. Valid is false for the
// not-computable case; the value is never NaN or infinite.
type Metric struct {
	Value decimal.Decimal
	Valid bool
}

func (m Metric) String() string {
	if !m.Valid {
		return MetricPlaceholder
	}
	return m.Value.String()
}

// Stats is the aggregate dashboard view derived from the three record
// collections. All fields are recomputed from scratch on every call.
type Stats struct {
	CurrentOdometer int64
	InitialOdometer int64
	TotalDistance   int64
	// NeedsMoreData is set when exactly one odometer reading exists:
	// a single point gives no span to compute distance from.
	NeedsMoreData bool

	VehicleSpend   Money
	FuelVolume     decimal.Decimal // litres
	CostPerKm      Metric          // rupees per km, 2 decimals
	AverageMileage Metric          // km per litre, 1 decimal

	MonthlySpend Money // outgoing records in the calendar month of now

	OwedByUser Money // open balances on loans taken
	OwedToUser Money // open balances on loans given
	NetBalance Money // OwedToUser - OwedByUser
}

// ComputeStats reduces the record snapshots to dashboard statistics.
// Empty collections yield zero values and not-computable metrics, never
// an error. The inputs are trusted to be boundary-validated.
func ComputeStats(expenses []Expense, readings []OdometerReading, loans []Loan, now time.Time) Stats {
	var s Stats

	for i, r := range readings {
		if i == 0 || r.Odometer > s.CurrentOdometer {
			s.CurrentOdometer = r.Odometer
		}
		if i == 0 || r.Odometer < s.InitialOdometer {
			s.InitialOdometer = r.Odometer
		}
	}
	s.TotalDistance = s.CurrentOdometer - s.InitialOdometer
	s.NeedsMoreData = len(readings) == 1

	fuelVolume := decimal.Zero
	for _, e := range expenses {
		if e.Direction != DirectionExpense {
			continue
		}
		if IsVehicleCategory(e.Category) {
			s.VehicleSpend.Cents += e.Amount.Cents
		}
		if e.Category == CategoryFuel {
			if v, ok := e.EffectiveFuelVolume(); ok {
				fuelVolume = fuelVolume.Add(v)
			}
		}
		if e.Date.SameMonth(now) {
			s.MonthlySpend.Cents += e.Amount.Cents
		}
	}
	s.FuelVolume = fuelVolume

	if s.TotalDistance > 0 {
		s.CostPerKm = Metric{
			Value: decimal.NewFromInt(s.VehicleSpend.Cents).
				Div(decimal.NewFromInt(s.TotalDistance * 100)).
				Round(2),
			Valid: true,
		}
	}
	if s.TotalDistance > 0 && fuelVolume.IsPositive() {
		s.AverageMileage = Metric{
			Value: decimal.NewFromInt(s.TotalDistance).
				Div(fuelVolume).
				Round(1),
			Valid: true,
		}
	}

	for _, l := range loans {
		balance := l.Balance()
		if balance.Cents <= 0 {
			continue
		}
		switch l.Direction {
		case LoanTaken:
			s.OwedByUser.Cents += balance.Cents
		case LoanGiven:
			s.OwedToUser.Cents += balance.Cents
		}
	}
	s.NetBalance.Cents = s.OwedToUser.Cents - s.OwedByUser.Cents

	return s
}
