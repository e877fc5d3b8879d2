package core

import (
	"errors"

	"github.com/shopspring/decimal"
)

// VehicleSettings holds the tank capacities used to annotate fuel
// status on the dashboard. A zero value means not configured.
type VehicleSettings struct {
	TankCapacity    decimal.Decimal // litres
	ReserveCapacity decimal.Decimal // litres
}

var ErrInvalidCapacity = errors.New("invalid tank capacity")

func (s VehicleSettings) Validate() error {
	if s.TankCapacity.IsNegative() || s.ReserveCapacity.IsNegative() {
		return ErrInvalidCapacity
	}
	if s.ReserveCapacity.GreaterThan(s.TankCapacity) {
		return ErrInvalidCapacity
	}
	return nil
}
