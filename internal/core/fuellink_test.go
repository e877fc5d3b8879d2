package core

import "testing"

func TestLinkedOdometerReading(t *testing.T) {
	e := Expense{
		Date:           NewDate(2024, 1, 5),
		Timestamp:      1704412800000,
		Amount:         Money{Cents: 50000},
		Category:       CategoryFuel,
		Direction:      DirectionExpense,
		FundingSource:  "Cash",
		LinkedOdometer: 1200,
		FuelStatus:     FuelStatusMain,
	}

	r, ok := LinkedOdometerReading(e)
	if !ok {
		t.Fatal("expected a linked reading")
	}
	if r.Odometer != 1200 {
		t.Errorf("Odometer = %d, want 1200", r.Odometer)
	}
	if r.FuelStatus != FuelStatusMain {
		t.Errorf("FuelStatus = %q, want Main", r.FuelStatus)
	}
	if !r.Date.Equal(e.Date.Time) {
		t.Errorf("Date = %s, want %s", r.Date.ISO(), e.Date.ISO())
	}
	if r.Distance != 0 {
		t.Errorf("Distance = %d, want 0", r.Distance)
	}
	if r.ID == "" {
		t.Error("reading should get a fresh ID")
	}
}

func TestLinkedOdometerReadingAbsent(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Expense)
	}{
		{"non-fuel category", func(e *Expense) { e.Category = "Groceries" }},
		{"no linked odometer", func(e *Expense) { e.LinkedOdometer = 0 }},
		{"no fuel status", func(e *Expense) { e.FuelStatus = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Expense{
				Category:       CategoryFuel,
				LinkedOdometer: 1200,
				FuelStatus:     FuelStatusMain,
			}
			tt.mutate(&e)
			if _, ok := LinkedOdometerReading(e); ok {
				t.Error("expected no linked reading")
			}
		})
	}
}
