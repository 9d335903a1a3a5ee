// Package storage owns durable persistence of expense records in SQLite.
// Schema management goes through embedded golang-migrate migrations; every
// failure of the underlying medium surfaces as a core.StorageError with no
// partial effect on the row set.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"expenses/internal/core"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Insert persists one expense inside a single transaction and returns the row
// with its assigned id. Ids are unique and monotonically increasing; the
// transaction is the serialization point for concurrent writers.
func (s *Store) Insert(ctx context.Context, e core.Expense) (core.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, &core.StorageError{Op: "insert expense", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (amount_cents, date, category, subcategory, note) VALUES (?, ?, ?, ?, ?)`,
		e.Amount.Cents, e.Date.String(), e.Category, nullable(e.Subcategory), nullable(e.Note))
	if err != nil {
		return core.Expense{}, &core.StorageError{Op: "insert expense", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, &core.StorageError{Op: "insert expense", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return core.Expense{}, &core.StorageError{Op: "insert expense", Err: err}
	}

	e.ID = id
	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category,
		"date", e.Date.String())
	return e, nil
}

// List returns records matching the filter, ordered by id ascending
// (insertion order). Filter fields combine with AND.
func (s *Store) List(ctx context.Context, f core.Filter) ([]core.Expense, error) {
	query, args := buildWhere(
		`SELECT id, amount_cents, date, category, subcategory, note FROM expenses`, f)
	query += ` ORDER BY id ASC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.StorageError{Op: "list expenses", Err: err}
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e         core.Expense
			date      string
			sub, note sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &date, &e.Category, &sub, &note); err != nil {
			return nil, &core.StorageError{Op: "list expenses", Err: err}
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, &core.StorageError{Op: "list expenses", Err: fmt.Errorf("row %d has malformed date %q", e.ID, date)}
		}
		e.Date = d
		e.Subcategory = sub.String
		e.Note = note.String
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "list expenses", Err: err}
	}
	return out, nil
}

// Summarize aggregates amounts grouped by category over the filtered record
// set, with a per-subcategory breakdown. Categories with no matching rows are
// omitted; results are ordered by category name.
func (s *Store) Summarize(ctx context.Context, f core.Filter) ([]core.CategoryTotal, error) {
	query, args := buildWhere(
		`SELECT category, COALESCE(subcategory, ''), SUM(amount_cents), COUNT(*) FROM expenses`, f)
	query += ` GROUP BY category, subcategory ORDER BY category ASC, SUM(amount_cents) DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.StorageError{Op: "summarize expenses", Err: err}
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var (
			category, sub string
			cents         int64
			count         int
		)
		if err := rows.Scan(&category, &sub, &cents, &count); err != nil {
			return nil, &core.StorageError{Op: "summarize expenses", Err: err}
		}

		if len(totals) == 0 || totals[len(totals)-1].Category != category {
			totals = append(totals, core.CategoryTotal{Category: category})
		}
		last := &totals[len(totals)-1]
		last.Total.Cents += cents
		last.Count += count
		if sub != "" {
			last.Subcategories = append(last.Subcategories, core.SubcategoryTotal{
				Name:  sub,
				Total: core.Money{Cents: cents},
				Count: count,
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Op: "summarize expenses", Err: err}
	}
	return totals, nil
}

// Total returns the lifetime sum of all recorded amounts.
func (s *Store) Total(ctx context.Context) (core.Money, error) {
	var cents int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses`).Scan(&cents)
	if err != nil {
		return core.Money{}, &core.StorageError{Op: "total expenses", Err: err}
	}
	return core.Money{Cents: cents}, nil
}

func buildWhere(base string, f core.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if !f.From.IsEmpty() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From.String())
	}
	if !f.To.IsEmpty() {
		conds = append(conds, "date <= ?")
		args = append(args, f.To.String())
	}
	if len(conds) > 0 {
		base += " WHERE " + strings.Join(conds, " AND ")
	}
	return base, args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
