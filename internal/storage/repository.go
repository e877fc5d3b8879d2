package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"kharcha/internal/core"
	"kharcha/internal/ledger"
)

// SQLiteRepository implements ledger.Store on a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, timestamp, amount_cents, category, direction,
		       funding_source, note, fuel_price_cents, fuel_volume
		FROM expenses ORDER BY date, timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var (
			e          core.Expense
			date       string
			fuelVolume string
		)
		if err := rows.Scan(&e.ID, &date, &e.Timestamp, &e.Amount.Cents, &e.Category,
			&e.Direction, &e.FundingSource, &e.Note, &e.FuelPrice.Cents, &fuelVolume); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}
		if fuelVolume != "" {
			if e.FuelVolume, err = decimal.NewFromString(fuelVolume); err != nil {
				return nil, fmt.Errorf("expense %s fuel volume: %w", e.ID, err)
			}
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, date, timestamp, amount_cents, category, direction,
		                      funding_source, note, fuel_price_cents, fuel_volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.ISO(), e.Timestamp, e.Amount.Cents, e.Category, string(e.Direction),
		e.FundingSource, e.Note, e.FuelPrice.Cents, fuelVolumeColumn(e.FuelVolume))
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"category", e.Category,
		"direction", e.Direction,
		"amount_cents", e.Amount.Cents)
	return e.ID, nil
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET date = ?, amount_cents = ?, category = ?, direction = ?,
		       funding_source = ?, note = ?, fuel_price_cents = ?, fuel_volume = ?
		WHERE id = ?`,
		e.Date.ISO(), e.Amount.Cents, e.Category, string(e.Direction),
		e.FundingSource, e.Note, e.FuelPrice.Cents, fuelVolumeColumn(e.FuelVolume), e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListReadings(ctx context.Context) ([]core.OdometerReading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, timestamp, odometer, fuel_status, distance
		FROM odometer_readings ORDER BY date, timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	defer rows.Close()

	var readings []core.OdometerReading
	for rows.Next() {
		var (
			reading core.OdometerReading
			date    string
			status  string
		)
		if err := rows.Scan(&reading.ID, &date, &reading.Timestamp,
			&reading.Odometer, &status, &reading.Distance); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		if reading.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("reading %s: %w", reading.ID, err)
		}
		reading.FuelStatus = core.FuelStatus(status)
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}

func (r *SQLiteRepository) CreateReading(ctx context.Context, reading core.OdometerReading) (string, error) {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO odometer_readings (id, date, timestamp, odometer, fuel_status, distance)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reading.ID, reading.Date.ISO(), reading.Timestamp,
		reading.Odometer, string(reading.FuelStatus), reading.Distance)
	if err != nil {
		return "", fmt.Errorf("create reading: %w", err)
	}

	slog.InfoContext(ctx, "Odometer reading saved",
		"id", reading.ID,
		"odometer", reading.Odometer,
		"fuel_status", reading.FuelStatus)
	return reading.ID, nil
}

func (r *SQLiteRepository) UpdateReading(ctx context.Context, reading core.OdometerReading) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE odometer_readings SET date = ?, odometer = ?, fuel_status = ?, distance = ?
		WHERE id = ?`,
		reading.Date.ISO(), reading.Odometer, string(reading.FuelStatus), reading.Distance, reading.ID)
	if err != nil {
		return fmt.Errorf("update reading: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteReading(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM odometer_readings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete reading: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, date, due_date, timestamp, direction, counterparty,
		       principal_cents, funding_source, note
		FROM loans ORDER BY date, timestamp`)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var loans []core.Loan
	index := make(map[string]int)
	for rows.Next() {
		var (
			l       core.Loan
			date    string
			dueDate string
		)
		if err := rows.Scan(&l.ID, &date, &dueDate, &l.Timestamp, &l.Direction,
			&l.Counterparty, &l.Principal.Cents, &l.FundingSource, &l.Note); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		if l.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("loan %s: %w", l.ID, err)
		}
		if dueDate != "" {
			if l.DueDate, err = core.ParseDate(dueDate); err != nil {
				return nil, fmt.Errorf("loan %s due date: %w", l.ID, err)
			}
		}
		index[l.ID] = len(loans)
		loans = append(loans, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Attach repayments in date order, insertion order within a day.
	repRows, err := r.db.QueryContext(ctx, `
		SELECT id, loan_id, amount_cents, date, note, funding_source
		FROM repayments ORDER BY date, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
	}
	defer repRows.Close()

	for repRows.Next() {
		var (
			rep    core.Repayment
			loanID string
			date   string
		)
		if err := repRows.Scan(&rep.ID, &loanID, &rep.Amount.Cents, &date,
			&rep.Note, &rep.FundingSource); err != nil {
			return nil, fmt.Errorf("scan repayment: %w", err)
		}
		if rep.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("repayment %s: %w", rep.ID, err)
		}
		if i, ok := index[loanID]; ok {
			loans[i].Repayments = append(loans[i].Repayments, rep)
		}
	}
	return loans, repRows.Err()
}

func (r *SQLiteRepository) CreateLoan(ctx context.Context, l core.Loan) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO loans (id, date, due_date, timestamp, direction, counterparty,
		                   principal_cents, funding_source, note)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Date.ISO(), dueDateColumn(l.DueDate), l.Timestamp, string(l.Direction),
		l.Counterparty, l.Principal.Cents, l.FundingSource, l.Note)
	if err != nil {
		return "", fmt.Errorf("create loan: %w", err)
	}

	slog.InfoContext(ctx, "Loan saved",
		"id", l.ID,
		"direction", l.Direction,
		"counterparty", l.Counterparty,
		"principal_cents", l.Principal.Cents)
	return l.ID, nil
}

func (r *SQLiteRepository) UpdateLoan(ctx context.Context, l core.Loan) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE loans SET date = ?, due_date = ?, direction = ?, counterparty = ?,
		       principal_cents = ?, funding_source = ?, note = ?
		WHERE id = ?`,
		l.Date.ISO(), dueDateColumn(l.DueDate), string(l.Direction), l.Counterparty,
		l.Principal.Cents, l.FundingSource, l.Note, l.ID)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	return requireRow(res)
}

// DeleteLoan removes the loan and, through the cascade, its repayments.
func (r *SQLiteRepository) DeleteLoan(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) AppendRepayment(ctx context.Context, loanID string, rep core.Repayment) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM loans WHERE id = ?`, loanID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check loan: %w", err)
	}
	if exists == 0 {
		return ledger.ErrNotFound
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO repayments (id, loan_id, amount_cents, date, note, funding_source)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rep.ID, loanID, rep.Amount.Cents, rep.Date.ISO(), rep.Note, rep.FundingSource)
	if err != nil {
		return fmt.Errorf("append repayment: %w", err)
	}

	slog.InfoContext(ctx, "Repayment saved",
		"loan_id", loanID,
		"repayment_id", rep.ID,
		"amount_cents", rep.Amount.Cents)
	return nil
}

func (r *SQLiteRepository) VehicleSettings(ctx context.Context) (core.VehicleSettings, error) {
	var tank, reserve string
	err := r.db.QueryRowContext(ctx,
		`SELECT tank_capacity, reserve_capacity FROM vehicle_settings WHERE id = 1`).
		Scan(&tank, &reserve)
	if errors.Is(err, sql.ErrNoRows) {
		return core.VehicleSettings{}, nil
	}
	if err != nil {
		return core.VehicleSettings{}, fmt.Errorf("read vehicle settings: %w", err)
	}

	var s core.VehicleSettings
	if s.TankCapacity, err = decimal.NewFromString(tank); err != nil {
		return core.VehicleSettings{}, fmt.Errorf("tank capacity: %w", err)
	}
	if s.ReserveCapacity, err = decimal.NewFromString(reserve); err != nil {
		return core.VehicleSettings{}, fmt.Errorf("reserve capacity: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) SaveVehicleSettings(ctx context.Context, s core.VehicleSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vehicle_settings (id, tank_capacity, reserve_capacity)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET tank_capacity = excluded.tank_capacity,
		                              reserve_capacity = excluded.reserve_capacity`,
		s.TankCapacity.String(), s.ReserveCapacity.String())
	if err != nil {
		return fmt.Errorf("save vehicle settings: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func fuelVolumeColumn(v decimal.Decimal) string {
	if v.IsZero() {
		return ""
	}
	return v.String()
}

func dueDateColumn(d core.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.ISO()
}
