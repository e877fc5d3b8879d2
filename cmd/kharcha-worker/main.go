package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"kharcha/internal/amqp"
	"kharcha/internal/config"
	"kharcha/internal/export/sheets"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	logger.Info("Starting kharcha-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if !cfg.SheetsExportEnabled() {
		logger.Error("Sheets export not configured - set GOOGLE_SPREADSHEET_ID and GOOGLE_API_KEY_FILE")
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	exporter, err := sheets.NewExporter(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, cfg.GoogleAPIKeyFile)
	if err != nil {
		logger.Error("Failed to initialize Sheets exporter", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName,
	)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(repo, exporter, 5*time.Second, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exportWorker.Run(gctx)
	})
	g.Go(func() error {
		return amqpClient.ConsumeRecordChanged(gctx, exportWorker.HandleChange)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}
