package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Loader struct {
	logger *zap.Logger
	db     *sqlx.DB
}

func NewLoader(logger *zap.Logger, db *sqlx.DB) *Loader {
	return &Loader{
		logger: logger.Named("dataset"),
		db:     db,
	}
}

// LoadDir loads every *.csv file in dir and returns the created tables, sorted.
func (l *Loader) LoadDir(ctx context.Context, dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no csv files in %s", dir)
	}
	sort.Strings(paths)

	var tables []string
	for _, path := range paths {
		name := TableName(path)
		if _, err := l.LoadFile(ctx, path, name); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		tables = append(tables, name)
	}
	return tables, nil
}

// LoadFile replaces table with the contents of the CSV file at path and
// returns the number of rows inserted.
func (l *Loader) LoadFile(ctx context.Context, path, table string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return 0, err
	}
	t.Name = table

	if err := l.Load(ctx, t); err != nil {
		return 0, err
	}

	l.logger.Info(
		"csv file loaded",
		zap.String("path", path),
		zap.String("table", table),
		zap.Int("rows", len(t.Rows)),
	)
	return len(t.Rows), nil
}

// Load recreates t.Name and inserts all rows in a single transaction.
func (l *Loader) Load(ctx context.Context, t *Table) error {
	if t.Name == "" {
		return fmt.Errorf("table name is required")
	}

	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dropTableStatement(t)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, createTableStatement(t)); err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(insertStatement(t)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := make([]interface{}, len(t.Columns))
	for i, row := range t.Rows {
		for j := range t.Columns {
			args[j] = t.Value(row, j)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}

func dropTableStatement(t *Table) string {
	return "DROP TABLE IF EXISTS " + t.Name
}

func createTableStatement(t *Table) string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = c.Name + " " + c.Type.SQL()
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, strings.Join(defs, ", "))
}

func insertStatement(t *Table) string {
	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.Name, strings.Join(names, ", "), strings.Join(marks, ", "))
}
