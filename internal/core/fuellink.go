package core

import "github.com/google/uuid"

// LinkedOdometerReading builds the companion odometer reading implied
// by a newly saved Fuel expense carrying a fill-up link. The reading
// shares the expense's date and creation instant, takes the linked
// odometer value and fuel status, and keeps the legacy distance at
// zero. The second return is false when the expense carries no link.
//
// This is a cross-entity write rule: the caller persisting the expense
// is responsible for persisting the returned reading afterwards. It
// applies to newly created expenses only, never to edits.
func LinkedOdometerReading(e Expense) (OdometerReading, bool) {
	if e.Category != CategoryFuel || e.LinkedOdometer <= 0 || e.FuelStatus == "" {
		return OdometerReading{}, false
	}
	return OdometerReading{
		ID:         uuid.NewString(),
		Date:       e.Date,
		Timestamp:  e.Timestamp,
		Odometer:   e.LinkedOdometer,
		FuelStatus: e.FuelStatus,
	}, true
}
