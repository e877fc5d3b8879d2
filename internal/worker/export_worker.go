// Package worker mirrors the ledger into an external spreadsheet. It
// listens for record-change events and rewrites the full history sheet,
// coalescing bursts of changes into a single export.
package worker

import (
	"context"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/export"
	"kharcha/internal/ledger"
	"kharcha/internal/log"
)

// SheetWriter replaces the target sheet's contents with the given rows.
type SheetWriter interface {
	Replace(ctx context.Context, rows [][]string) error
}

// DefaultResyncInterval is how often the sheet is rewritten even
// without change events, catching writes whose events were lost.
const DefaultResyncInterval = time.Hour

// ExportWorker re-exports the combined history whenever records change.
type ExportWorker struct {
	store    ledger.Store
	sheet    SheetWriter
	logger   *log.Logger
	debounce time.Duration
	resync   time.Duration

	dirty chan struct{}
}

func NewExportWorker(store ledger.Store, sheet SheetWriter, debounce time.Duration, logger *log.Logger) *ExportWorker {
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	return &ExportWorker{
		store:    store,
		sheet:    sheet,
		logger:   logger,
		debounce: debounce,
		resync:   DefaultResyncInterval,
		dirty:    make(chan struct{}, 1),
	}
}

// HandleChange marks the sheet stale. Safe to call from the AMQP
// consumer goroutine; duplicate marks collapse into one export.
func (w *ExportWorker) HandleChange(msg *amqp.RecordChangedMessage) error {
	w.logger.Info("record change received",
		log.FieldRecordKind, msg.Kind,
		log.FieldRecordID, msg.ID,
		log.FieldOperation, msg.Op,
	)
	select {
	case w.dirty <- struct{}{}:
	default:
	}
	return nil
}

// Run exports on startup, then after each change mark once the
// debounce window has passed, and at least every resync interval.
// Blocks until ctx is done.
func (w *ExportWorker) Run(ctx context.Context) error {
	if err := w.exportOnce(ctx); err != nil {
		w.logger.Error("initial export failed", log.FieldError, err)
	}

	ticker := time.NewTicker(w.resync)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.exportOnce(ctx); err != nil {
				w.logger.Error("periodic export failed", log.FieldError, err)
			}
			continue
		case <-w.dirty:
		}

		timer := time.NewTimer(w.debounce)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		// Drain marks that arrived during the debounce window.
		select {
		case <-w.dirty:
		default:
		}

		if err := w.exportOnce(ctx); err != nil {
			w.logger.Error("export failed", log.FieldError, err)
		}
	}
}

func (w *ExportWorker) exportOnce(ctx context.Context) error {
	expenses, err := w.store.ListExpenses(ctx)
	if err != nil {
		return err
	}
	readings, err := w.store.ListReadings(ctx)
	if err != nil {
		return err
	}
	loans, err := w.store.ListLoans(ctx)
	if err != nil {
		return err
	}

	rows := export.Rows(expenses, readings, loans)
	if err := w.sheet.Replace(ctx, rows); err != nil {
		return err
	}
	w.logger.Info("history exported", "rows", len(rows))
	return nil
}
