package judge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elmanelman/sql-trainer/config"
)

// SelectionJudge runs SELECT solutions against the practice databases and
// compares them with their reference queries. Queries are executed one at a
// time and always inside a transaction that is rolled back.
type SelectionJudge struct {
	logger *zap.Logger

	mu           sync.Mutex
	selectionDBs map[string]*sqlx.DB
	references   map[string]*ResultTable

	queryTimeout     time.Duration
	maxRows          int
	tolerance        Tolerance
	checkColumnNames bool
}

func NewSelectionJudge(logger *zap.Logger, cfg config.SelectionJudgeConfig) *SelectionJudge {
	return &SelectionJudge{
		logger:       logger.Named("selection"),
		selectionDBs: map[string]*sqlx.DB{},
		references:   map[string]*ResultTable{},
		queryTimeout: time.Duration(cfg.QueryTimeout) * time.Millisecond,
		maxRows:      cfg.MaxRows,
		tolerance: Tolerance{
			Absolute: cfg.Tolerance.Absolute,
			Relative: cfg.Tolerance.Relative,
		},
		checkColumnNames: cfg.CheckColumnNames,
	}
}

// AddDB registers a practice database under name.
func (j *SelectionJudge) AddDB(name string, db *sqlx.DB) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.selectionDBs[name] = db
}

func (j *SelectionJudge) DB(name string) (*sqlx.DB, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	db, ok := j.selectionDBs[name]
	return db, ok
}

func (j *SelectionJudge) ConnectSelectionDBs(cfgs []config.PracticeDBConfig) error {
	for _, c := range cfgs {
		db, err := ConnectPracticeDB(c)
		if err != nil {
			return fmt.Errorf("connect practice DB %s: %w", c.Name, err)
		}

		j.AddDB(c.Name, db)

		j.logger.Info(
			"practice DB connected",
			zap.String("name", c.Name),
			zap.String("driver", c.Driver),
		)
	}
	return nil
}

func (j *SelectionJudge) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	var firstErr error
	for name, db := range j.selectionDBs {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close practice DB %s: %w", name, err)
		}
	}
	j.selectionDBs = map[string]*sqlx.DB{}
	return firstErr
}

func (j *SelectionJudge) options(job SelectionJob) Options {
	return Options{
		OrderSensitive:   job.CheckOrder,
		SortBy:           job.SortBy,
		CheckColumnNames: j.checkColumnNames,
		Tolerance:        j.tolerance,
	}
}

// Execute runs a single SELECT statement against the named practice database.
func (j *SelectionJudge) Execute(ctx context.Context, schemaName, query string) (*ResultTable, error) {
	query = prepareSelectionSolution(query)
	if err := checkSelection(query); err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.execute(ctx, schemaName, query)
}

func (j *SelectionJudge) execute(ctx context.Context, schemaName, query string) (*ResultTable, error) {
	db, ok := j.selectionDBs[schemaName]
	if !ok {
		return nil, fmt.Errorf("practice DB %q does not exist", schemaName)
	}

	ctx, cancel := context.WithTimeout(ctx, j.queryTimeout)
	defer cancel()

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return j.readRows(rows)
}

func (j *SelectionJudge) readRows(rows *sqlx.Rows) (*ResultTable, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	dbTypes := make([]string, len(columns))
	for i, t := range types {
		dbTypes[i] = t.DatabaseTypeName()
	}

	table := &ResultTable{Columns: columns, Rows: [][]Value{}}
	for rows.Next() {
		if len(table.Rows) == j.maxRows {
			return nil, fmt.Errorf("result has more than %d rows", j.maxRows)
		}
		raw, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		row := make([]Value, len(raw))
		for i, v := range raw {
			row[i] = NewValue(v, dbTypes[i])
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func (j *SelectionJudge) reference(ctx context.Context, job SelectionJob) (*ResultTable, error) {
	if job.ReferenceKey != "" {
		if t, ok := j.references[job.ReferenceKey]; ok {
			return t, nil
		}
	}
	t, err := j.execute(ctx, job.SchemaName, prepareSelectionSolution(job.ReferenceSolution))
	if err != nil {
		return nil, err
	}
	if job.ReferenceKey != "" {
		j.references[job.ReferenceKey] = t
	}
	return t, nil
}

// Review checks a solution: statement shape, restrictions, then result
// content and order. Every outcome, including execution failures, is a
// verdict.
func (j *SelectionJudge) Review(ctx context.Context, job SelectionJob) Verdict {
	solution := prepareSelectionSolution(job.Solution)

	if err := checkSelection(solution); err != nil {
		return failed(RestrictionViolated, err.Error())
	}
	if r := violatedRestriction(solution, job.Restrictions); r != "" {
		return failed(RestrictionViolated, fmt.Sprintf("\"%s\" is restricted", r))
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.selectionDBs[job.SchemaName]; !ok {
		j.logger.Error(
			"practice DB does not exist",
			zap.String("database_name", job.SchemaName),
		)
		return executionFailed(fmt.Sprintf("practice DB %q does not exist", job.SchemaName))
	}

	var expected, actual Execution
	expected.Table, expected.Err = j.reference(ctx, job)
	if expected.Err != nil {
		j.logger.Error(
			"error executing reference solution",
			zap.String("submission_id", job.SubmissionID),
			zap.String("reference", job.ReferenceKey),
			zap.Error(expected.Err),
		)
	} else {
		actual.Table, actual.Err = j.execute(ctx, job.SchemaName, solution)
	}

	v := Judge(expected, actual, j.options(job))
	j.logger.Info(
		"solution reviewed",
		zap.String("submission_id", job.SubmissionID),
		zap.Stringer("status", v.Status),
	)
	return v
}
