// Package sheets mirrors the export rows into a Google Sheets tab.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"kharcha/internal/export"
)

// Exporter writes the history export into a single named sheet,
// replacing its contents wholesale on every run. The sheet is a plain
// mirror; the local store stays the source of truth.
type Exporter struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	sheetName     string
}

func NewExporter(ctx context.Context, spreadsheetID, sheetName, credentialsFile string) (*Exporter, error) {
	svc, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// Replace clears the sheet and writes the header plus the given rows.
func (e *Exporter) Replace(ctx context.Context, rows [][]string) error {
	values := make([][]interface{}, 0, len(rows)+1)
	values = append(values, toRow(export.Header))
	for _, row := range rows {
		values = append(values, toRow(row))
	}

	_, err := e.svc.Spreadsheets.Values.
		Clear(e.spreadsheetID, e.sheetName, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear sheet: %w", err)
	}

	_, err = e.svc.Spreadsheets.Values.
		Update(e.spreadsheetID, e.sheetName, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update sheet: %w", err)
	}
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
