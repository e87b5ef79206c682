package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/elmanelman/sql-trainer/config"
	"github.com/elmanelman/sql-trainer/dataset"
	"github.com/elmanelman/sql-trainer/exercise"
	"github.com/elmanelman/sql-trainer/templates"
)

// createdAtLayout sorts lexically in chronological order.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z"

type Submission struct {
	SubmissionID    string `db:"submission_id"`
	Theme           int    `db:"theme"`
	Exercise        int    `db:"exercise"`
	Solution        string `db:"solution"`
	StatusID        int    `db:"status_id"`
	ReviewerMessage string `db:"reviewer_message"`
	CreatedAt       string `db:"created_at"`

	Verdict Verdict `db:"-"`
}

// Trainer wires the catalogue, the practice databases and the selection judge.
type Trainer struct {
	logger *zap.Logger

	mainDB *sqlx.DB

	catalog        *exercise.Catalog
	selectionJudge *SelectionJudge
	defaultSchema  string

	now func() time.Time
}

func NewTrainer() *Trainer {
	return &Trainer{
		now: time.Now,
	}
}

func (t *Trainer) Start(ctx context.Context, cfg config.TrainerConfig) error {
	// set up common dependencies
	if err := t.SetupLogger(cfg); err != nil {
		return err
	}
	if err := t.ConnectMainDB(cfg); err != nil {
		return err
	}

	t.selectionJudge = NewSelectionJudge(t.logger, cfg.SelectionJudgeConfig)
	if err := t.selectionJudge.ConnectSelectionDBs(cfg.PracticeDBConfigs); err != nil {
		return err
	}
	t.defaultSchema = cfg.DefaultPracticeDB()

	if err := t.LoadDatasets(ctx, cfg.PracticeDBConfigs); err != nil {
		return err
	}

	t.catalog = exercise.NewCatalog(t.logger, t.mainDB, cfg.ExercisesConfig.Dir, t.defaultSchema)
	if err := t.catalog.Load(ctx); err != nil {
		return fmt.Errorf("load exercises: %w", err)
	}

	if _, err := t.mainDB.ExecContext(ctx, templates.CreateSubmissions); err != nil {
		return err
	}

	return nil
}

func (t *Trainer) Stop() error {
	var errs []error
	if t.selectionJudge != nil {
		errs = append(errs, t.selectionJudge.Close())
	}
	if t.mainDB != nil {
		errs = append(errs, t.mainDB.Close())
	}
	if t.logger != nil {
		t.logger.Sync()
	}
	return errors.Join(errs...)
}

func (t *Trainer) Logger() *zap.Logger {
	return t.logger
}

func (t *Trainer) SetupLogger(cfg config.TrainerConfig) error {
	logger, err := cfg.LoggerConfig.Build()
	if err != nil {
		return err
	}

	t.logger = logger

	return nil
}

func (t *Trainer) ConnectMainDB(cfg config.TrainerConfig) error {
	db, err := ConnectMainDB(cfg.MainDBConfig)
	if err != nil {
		return fmt.Errorf("connect main DB: %w", err)
	}

	t.mainDB = db

	t.logger.Info(
		"main database connected",
		zap.String("path", cfg.MainDBConfig.Path),
	)

	return nil
}

// LoadDatasets loads the CSV dataset of every practice database that has one.
func (t *Trainer) LoadDatasets(ctx context.Context, cfgs []config.PracticeDBConfig) error {
	for _, c := range cfgs {
		if c.DatasetDir == "" {
			continue
		}
		db, ok := t.selectionJudge.DB(c.Name)
		if !ok {
			return fmt.Errorf("practice DB %s is not connected", c.Name)
		}
		loader := dataset.NewLoader(t.logger, db)
		tables, err := loader.LoadDir(ctx, c.DatasetDir)
		if err != nil {
			return fmt.Errorf("load dataset for %s: %w", c.Name, err)
		}
		t.logger.Info(
			"dataset loaded",
			zap.String("name", c.Name),
			zap.Strings("tables", tables),
		)
	}
	return nil
}

func (t *Trainer) Themes(ctx context.Context) ([]exercise.Theme, error) {
	return t.catalog.Themes(ctx)
}

func (t *Trainer) Exercises(ctx context.Context, theme int) ([]exercise.Exercise, error) {
	return t.catalog.Exercises(ctx, theme)
}

func (t *Trainer) Exercise(ctx context.Context, theme, number int) (*exercise.Exercise, error) {
	return t.catalog.Get(ctx, theme, number)
}

// Query runs free-form SQL against the default practice database.
func (t *Trainer) Query(ctx context.Context, query string) (*ResultTable, error) {
	return t.selectionJudge.Execute(ctx, t.defaultSchema, query)
}

// Submit reviews a solution to an exercise and records the outcome.
func (t *Trainer) Submit(ctx context.Context, theme, number int, solution string) (*Submission, error) {
	e, err := t.catalog.Get(ctx, theme, number)
	if err != nil {
		return nil, err
	}

	job := SelectionJob{
		SubmissionID:      uuid.New().String(),
		Solution:          solution,
		ReferenceSolution: e.Solution,
		ReferenceKey:      e.SchemaName + "/" + e.Key(),
		SchemaName:        e.SchemaName,
		CheckOrder:        e.CheckOrder,
		SortBy:            e.SortColumns(),
		Restrictions:      e.Restrictions,
	}
	v := t.selectionJudge.Review(ctx, job)

	s := &Submission{
		SubmissionID:    job.SubmissionID,
		Theme:           theme,
		Exercise:        number,
		Solution:        solution,
		StatusID:        int(v.Status),
		ReviewerMessage: v.ReviewerMessage,
		CreatedAt:       t.now().UTC().Format(createdAtLayout),
		Verdict:         v,
	}
	if err := t.UpdateSubmissionReviewInfo(ctx, s); err != nil {
		t.logger.Error(
			"submission update failed",
			zap.String("submission_id", s.SubmissionID),
			zap.Error(err),
		)
		return nil, err
	}
	return s, nil
}

func (t *Trainer) UpdateSubmissionReviewInfo(ctx context.Context, s *Submission) error {
	query := t.mainDB.Rebind(templates.InsertSubmission)
	_, err := t.mainDB.ExecContext(ctx, query,
		s.SubmissionID, s.Theme, s.Exercise, s.Solution, s.StatusID, s.ReviewerMessage, s.CreatedAt,
	)
	return err
}

// Submissions returns the most recent submissions, newest first. Verdicts
// are rebuilt from the stored status and message only.
func (t *Trainer) Submissions(ctx context.Context, limit int) ([]Submission, error) {
	var submissions []Submission
	if err := t.mainDB.SelectContext(ctx, &submissions, t.mainDB.Rebind(templates.FetchSubmissions), limit); err != nil {
		return nil, err
	}
	for i := range submissions {
		s := &submissions[i]
		s.Verdict = Verdict{
			Status:          Status(s.StatusID),
			ReviewerMessage: s.ReviewerMessage,
			Row:             -1,
			Column:          -1,
		}
	}
	return submissions, nil
}
