// Command export-csv dumps the combined history as CSV to stdout or a
// file. It reads the SQLite database directly and needs no server.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/joho/godotenv"

	"kharcha/internal/config"
	"kharcha/internal/export"
	applog "kharcha/internal/log"
	"kharcha/internal/storage"
)

func main() {
	_ = godotenv.Load()

	outPath := flag.String("o", "", "output file (default stdout)")
	flag.Parse()

	logger := applog.New(applog.Config{Component: applog.ComponentExport})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open database", applog.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	ctx := context.Background()
	expenses, err := repo.ListExpenses(ctx)
	if err != nil {
		logger.Error("Failed to list expenses", applog.FieldError, err)
		os.Exit(1)
	}
	readings, err := repo.ListReadings(ctx)
	if err != nil {
		logger.Error("Failed to list readings", applog.FieldError, err)
		os.Exit(1)
	}
	loans, err := repo.ListLoans(ctx)
	if err != nil {
		logger.Error("Failed to list loans", applog.FieldError, err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("Failed to create output file", applog.FieldError, err, "path", *outPath)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, expenses, readings, loans); err != nil {
		logger.Error("Export failed", applog.FieldError, err)
		os.Exit(1)
	}
}
