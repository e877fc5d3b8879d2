// Package export renders the combined history for external consumers.
// Rows are always emitted in the compositor's sort order so the export
// never disagrees with the on-screen totals.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"kharcha/internal/core"
)

// Header is the first CSV row.
var Header = []string{"Type", "Date", "Details", "Amount", "Status"}

const (
	statusCompleted = "Completed"
	statusLogged    = "Logged"
	statusSettled   = "Settled"
	statusOpen      = "Open"
)

// Rows flattens the record collections into export rows, one per
// record, ordered exactly as CombinedHistory orders them. Loan status
// uses the same balance formula as the dashboard.
func Rows(expenses []core.Expense, readings []core.OdometerReading, loans []core.Loan) [][]string {
	items := core.CombinedHistory(expenses, readings, loans)
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case core.KindExpense:
			e := item.Expense
			kind := "Expense"
			if e.Direction == core.DirectionIncome {
				kind = "Income"
			}
			details := e.Category
			if e.Note != "" {
				details += " - " + e.Note
			}
			rows = append(rows, []string{kind, e.Date.ISO(), details, e.Amount.String(), statusCompleted})
		case core.KindOdometer:
			r := item.Reading
			details := fmt.Sprintf("Odometer %d", r.Odometer)
			if r.FuelStatus != "" {
				details += fmt.Sprintf(" (%s)", r.FuelStatus)
			}
			rows = append(rows, []string{"Mileage", r.Date.ISO(), details, "", statusLogged})
		case core.KindLoan:
			l := item.Loan
			status := statusOpen
			if l.Settled() {
				status = statusSettled
			}
			details := fmt.Sprintf("%s %s", l.Direction, l.Counterparty)
			rows = append(rows, []string{"Loan", l.Date.ISO(), details, l.Principal.String(), status})
		}
	}
	return rows
}

// WriteCSV writes the header and all rows to w.
func WriteCSV(w io.Writer, expenses []core.Expense, readings []core.OdometerReading, loans []core.Loan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range Rows(expenses, readings, loans) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
