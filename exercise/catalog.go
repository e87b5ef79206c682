package exercise

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elmanelman/sql-trainer/templates"
)

var ErrNotFound = errors.New("exercise not found")

const (
	indexFile    = "exercises.csv"
	questionsDir = "questions"
	answersDir   = "answers"
)

// Catalog serves exercises from a directory laid out as
//
//	exercises.csv
//	questions/<theme>.<number>.txt
//	answers/<theme>.<number>.sql
//
// The index is copied into the main database by Load.
type Catalog struct {
	logger        *zap.Logger
	db            *sqlx.DB
	dir           string
	defaultSchema string
}

func NewCatalog(logger *zap.Logger, db *sqlx.DB, dir, defaultSchema string) *Catalog {
	return &Catalog{
		logger:        logger.Named("catalog"),
		db:            db,
		dir:           dir,
		defaultSchema: defaultSchema,
	}
}

func (c *Catalog) questionPath(theme, number int) string {
	return filepath.Join(c.dir, questionsDir, Key(theme, number)+".txt")
}

func (c *Catalog) answerPath(theme, number int) string {
	return filepath.Join(c.dir, answersDir, Key(theme, number)+".sql")
}

func (c *Catalog) readIndex() ([]Exercise, error) {
	data, err := ioutil.ReadFile(filepath.Join(c.dir, indexFile))
	if err != nil {
		return nil, err
	}

	var records []*record
	if err := gocsv.UnmarshalBytes(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", indexFile, err)
	}

	exercises := make([]Exercise, 0, len(records))
	seen := map[string]bool{}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", indexFile, i+2, err)
		}
		e := r.exercise(c.defaultSchema)
		if seen[e.Key()] {
			return nil, fmt.Errorf("%s line %d: duplicate exercise %s", indexFile, i+2, e.Key())
		}
		seen[e.Key()] = true
		for _, path := range []string{c.questionPath(e.Theme, e.Number), c.answerPath(e.Theme, e.Number)} {
			if _, err := os.Stat(path); err != nil {
				return nil, fmt.Errorf("exercise %s: %w", e.Key(), err)
			}
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

// Load reads the exercise index and replaces the catalogue tables with it.
func (c *Catalog) Load(ctx context.Context) error {
	exercises, err := c.readIndex()
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, query := range []string{
		templates.CreateExercises,
		templates.CreateExerciseRestrictions,
		templates.ClearExercises,
		templates.ClearExerciseRestrictions,
	} {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	for _, e := range exercises {
		if _, err := tx.ExecContext(ctx, tx.Rebind(templates.InsertExercise),
			e.Theme, e.ThemeName, e.Number, e.Title, e.CheckOrder, e.SortBy, e.Hint, e.SchemaName,
		); err != nil {
			return fmt.Errorf("insert exercise %s: %w", e.Key(), err)
		}
		for _, r := range e.Restrictions {
			if _, err := tx.ExecContext(ctx, tx.Rebind(templates.InsertExerciseRestriction),
				e.Theme, e.Number, r,
			); err != nil {
				return fmt.Errorf("insert restriction for %s: %w", e.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	c.logger.Info(
		"exercises loaded",
		zap.String("dir", c.dir),
		zap.Int("count", len(exercises)),
	)
	return nil
}

func (c *Catalog) Themes(ctx context.Context) ([]Theme, error) {
	var themes []Theme
	if err := c.db.SelectContext(ctx, &themes, templates.FetchThemes); err != nil {
		return nil, err
	}
	return themes, nil
}

// Exercises lists a theme's exercises without their prompt or solution.
func (c *Catalog) Exercises(ctx context.Context, theme int) ([]Exercise, error) {
	var exercises []Exercise
	if err := c.db.SelectContext(ctx, &exercises, c.db.Rebind(templates.FetchThemeExercises), theme); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *Catalog) FetchRestrictions(ctx context.Context, theme, number int) ([]string, error) {
	var restrictions []string
	err := c.db.SelectContext(ctx, &restrictions, c.db.Rebind(templates.FetchTaskRestrictions), theme, number)
	if err != nil {
		return nil, err
	}
	return restrictions, nil
}

// Get returns a fully loaded exercise, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, theme, number int) (*Exercise, error) {
	var e Exercise
	err := c.db.GetContext(ctx, &e, c.db.Rebind(templates.FetchExercise), theme, number)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, Key(theme, number))
	}
	if err != nil {
		return nil, err
	}

	if e.Restrictions, err = c.FetchRestrictions(ctx, theme, number); err != nil {
		return nil, err
	}

	question, err := ioutil.ReadFile(c.questionPath(theme, number))
	if err != nil {
		c.logger.Error("failed to load question", zap.String("exercise", e.Key()), zap.Error(err))
		return nil, err
	}
	answer, err := ioutil.ReadFile(c.answerPath(theme, number))
	if err != nil {
		c.logger.Error("failed to load answer", zap.String("exercise", e.Key()), zap.Error(err))
		return nil, err
	}
	e.Question = string(question)
	e.Solution = string(answer)

	return &e, nil
}
