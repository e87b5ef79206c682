package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/elmanelman/sql-trainer/exercise"
	"github.com/elmanelman/sql-trainer/judge"
)

const (
	defaultSubmissionsLimit = 20
	maxSubmissionsLimit     = 200
)

// Trainer is the part of judge.Trainer served over HTTP.
type Trainer interface {
	Themes(ctx context.Context) ([]exercise.Theme, error)
	Exercises(ctx context.Context, theme int) ([]exercise.Exercise, error)
	Exercise(ctx context.Context, theme, number int) (*exercise.Exercise, error)
	Submit(ctx context.Context, theme, number int, solution string) (*judge.Submission, error)
	Submissions(ctx context.Context, limit int) ([]judge.Submission, error)
	Query(ctx context.Context, query string) (*judge.ResultTable, error)
}

type API struct {
	logger  *zap.Logger
	trainer Trainer
}

func New(trainer Trainer, logger *zap.Logger) API {
	return API{
		trainer: trainer,
		logger:  logger.Named("api"),
	}
}

func (h API) Register(g *echo.Group) {
	g.GET("/themes", h.ListThemes)
	g.GET("/themes/:theme/exercises", h.ListExercises)
	g.GET("/themes/:theme/exercises/:exercise", h.GetExercise)
	g.POST("/themes/:theme/exercises/:exercise/submissions", h.Submit)
	g.GET("/submissions", h.ListSubmissions)
	g.POST("/query", h.Query)
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

func exerciseParams(c echo.Context) (int, int, error) {
	theme, err := intParam(c, "theme")
	if err != nil {
		return 0, 0, err
	}
	number, err := intParam(c, "exercise")
	if err != nil {
		return 0, 0, err
	}
	return theme, number, nil
}

// ListThemes godoc
//
//	@Summary	List exercise themes
//	@Produce	json
//	@Success	200	{object}	ListThemesResponse
//	@Router		/api/v1/themes [get]
func (h API) ListThemes(c echo.Context) error {
	themes, err := h.trainer.Themes(c.Request().Context())
	if err != nil {
		h.logger.Error("failed to list themes", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list themes")
	}

	resp := ListThemesResponse{Themes: []Theme{}}
	for _, t := range themes {
		resp.Themes = append(resp.Themes, toTheme(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// ListExercises godoc
//
//	@Summary	List the exercises of a theme
//	@Produce	json
//	@Param		theme	path		int	true	"Theme number"
//	@Success	200		{object}	ListExercisesResponse
//	@Router		/api/v1/themes/{theme}/exercises [get]
func (h API) ListExercises(c echo.Context) error {
	theme, err := intParam(c, "theme")
	if err != nil {
		return err
	}

	exercises, err := h.trainer.Exercises(c.Request().Context(), theme)
	if err != nil {
		h.logger.Error("failed to list exercises", zap.Int("theme", theme), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list exercises")
	}
	if len(exercises) == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "theme not found")
	}

	resp := ListExercisesResponse{}
	for i := range exercises {
		resp.Exercises = append(resp.Exercises, toExercise(&exercises[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// GetExercise godoc
//
//	@Summary	Get an exercise with its question
//	@Produce	json
//	@Param		theme		path		int		true	"Theme number"
//	@Param		exercise	path		int		true	"Exercise number"
//	@Param		reveal		query		bool	false	"Include the reference solution"
//	@Success	200			{object}	Exercise
//	@Router		/api/v1/themes/{theme}/exercises/{exercise} [get]
func (h API) GetExercise(c echo.Context) error {
	theme, number, err := exerciseParams(c)
	if err != nil {
		return err
	}

	e, err := h.trainer.Exercise(c.Request().Context(), theme, number)
	if errors.Is(err, exercise.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "exercise not found")
	}
	if err != nil {
		h.logger.Error("failed to load exercise", zap.String("exercise", exercise.Key(theme, number)), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load exercise")
	}

	resp := toExercise(e)
	if reveal, _ := strconv.ParseBool(c.QueryParam("reveal")); reveal {
		resp.Solution = e.Solution
	}
	return c.JSON(http.StatusOK, resp)
}

// Submit godoc
//
//	@Summary	Submit a solution to an exercise
//	@Accept		json
//	@Produce	json
//	@Param		theme		path		int				true	"Theme number"
//	@Param		exercise	path		int				true	"Exercise number"
//	@Param		request		body		SubmitRequest	true	"Solution"
//	@Success	200			{object}	Submission
//	@Router		/api/v1/themes/{theme}/exercises/{exercise}/submissions [post]
func (h API) Submit(c echo.Context) error {
	theme, number, err := exerciseParams(c)
	if err != nil {
		return err
	}

	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if strings.TrimSpace(req.Query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	ctx := c.Request().Context()
	s, err := h.trainer.Submit(ctx, theme, number, req.Query)
	if errors.Is(err, exercise.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "exercise not found")
	}
	if err != nil {
		h.logger.Error("failed to review submission", zap.String("exercise", exercise.Key(theme, number)), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to review submission")
	}

	resp := toSubmission(s)
	if !s.Verdict.Passed() {
		if e, err := h.trainer.Exercise(ctx, theme, number); err == nil {
			resp.Hint = e.Hint
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ListSubmissions godoc
//
//	@Summary	List recent submissions, newest first
//	@Produce	json
//	@Param		limit	query		int	false	"Maximum number of submissions"
//	@Success	200		{object}	ListSubmissionsResponse
//	@Router		/api/v1/submissions [get]
func (h API) ListSubmissions(c echo.Context) error {
	limit := defaultSubmissionsLimit
	if s := c.QueryParam("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = v
	}
	if limit > maxSubmissionsLimit {
		limit = maxSubmissionsLimit
	}

	submissions, err := h.trainer.Submissions(c.Request().Context(), limit)
	if err != nil {
		h.logger.Error("failed to list submissions", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list submissions")
	}

	resp := ListSubmissionsResponse{Submissions: []Submission{}}
	for i := range submissions {
		resp.Submissions = append(resp.Submissions, toSubmission(&submissions[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

// Query godoc
//
//	@Summary	Run a query against the practice database
//	@Accept		json
//	@Produce	json
//	@Param		request	body		QueryRequest	true	"Query"
//	@Success	200		{object}	QueryResponse
//	@Failure	400		{object}	QueryResponse
//	@Router		/api/v1/query [post]
func (h API) Query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	result, err := h.trainer.Query(c.Request().Context(), req.Query)
	if err != nil {
		return c.JSON(http.StatusBadRequest, QueryResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusOK, QueryResponse{Result: result})
}
