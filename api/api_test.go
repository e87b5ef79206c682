package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/elmanelman/sql-trainer/config"
	"github.com/elmanelman/sql-trainer/judge"
)

type HttpHandlerSuite struct {
	suite.Suite

	trainer *judge.Trainer
	router  *echo.Echo
}

func (s *HttpHandlerSuite) SetupSuite() {
	cfg := config.Default()
	cfg.LoggerConfig = zap.NewDevelopmentConfig()
	cfg.LoggerConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	cfg.MainDBConfig.Path = ":memory:"
	cfg.PracticeDBConfigs[0].Path = ":memory:"
	cfg.PracticeDBConfigs[0].DatasetDir = "../data"
	cfg.ExercisesConfig.Dir = "../exercises"

	s.trainer = judge.NewTrainer()
	s.Require().NoError(s.trainer.Start(context.Background(), cfg))

	s.router = NewRouter(zap.NewNop(), New(s.trainer, zap.NewNop()))
}

func (s *HttpHandlerSuite) TearDownSuite() {
	s.Require().NoError(s.trainer.Stop())
}

func TestHttpHandlers(t *testing.T) {
	suite.Run(t, &HttpHandlerSuite{})
}

func doSimpleJSONRequest(router *echo.Echo, method string, path string, request, response interface{}) (*httptest.ResponseRecorder, error) {
	var r io.Reader
	if request != nil {
		out, err := json.Marshal(request)
		if err != nil {
			return nil, err
		}

		r = bytes.NewReader(out)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Add("content-type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if response != nil {
		b, err := io.ReadAll(rec.Body)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal(b, response); err != nil {
			return nil, fmt.Errorf("%w: %s", err, string(b))
		}
	}

	return rec, nil
}

func (s *HttpHandlerSuite) TestListThemes() {
	require := s.Require()

	var resp ListThemesResponse
	rec, err := doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes", nil, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)

	require.Len(resp.Themes, 3)
	require.Equal(1, resp.Themes[0].Number)
	require.Equal(3, resp.Themes[0].ExerciseCount)
}

func (s *HttpHandlerSuite) TestListExercises() {
	require := s.Require()

	var resp ListExercisesResponse
	rec, err := doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/2/exercises", nil, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.Len(resp.Exercises, 3)
	require.Equal("2.1", resp.Exercises[0].Key)
	require.Empty(resp.Exercises[0].Solution)

	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/9/exercises", nil, nil)
	require.NoError(err)
	require.Equal(http.StatusNotFound, rec.Code)

	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/x/exercises", nil, nil)
	require.NoError(err)
	require.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HttpHandlerSuite) TestGetExercise() {
	require := s.Require()

	var resp Exercise
	rec, err := doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/2/exercises/3", nil, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.NotEmpty(resp.Question)
	require.Equal([]string{"JOIN"}, resp.Restrictions)
	require.Empty(resp.Solution)

	resp = Exercise{}
	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/2/exercises/3?reveal=true", nil, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.NotEmpty(resp.Solution)

	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/themes/2/exercises/42", nil, nil)
	require.NoError(err)
	require.Equal(http.StatusNotFound, rec.Code)
}

func (s *HttpHandlerSuite) TestSubmit() {
	require := s.Require()

	var resp Submission
	rec, err := doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/themes/1/exercises/1/submissions",
		SubmitRequest{Query: "SELECT * FROM employees ORDER BY id"}, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.Equal("1.1", resp.Exercise)
	require.Equal(judge.Accepted, resp.Verdict.Status)
	require.NotEmpty(resp.ID)
	require.Empty(resp.Hint)

	var raw map[string]interface{}
	rec, err = doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/themes/1/exercises/1/submissions",
		SubmitRequest{Query: "SELECT * FROM employees ORDER BY id DESC"}, &raw)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	verdict := raw["verdict"].(map[string]interface{})
	require.Equal("incorrect_order", verdict["status"])

	var listed ListSubmissionsResponse
	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/submissions?limit=1", nil, &listed)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.Len(listed.Submissions, 1)
}

func (s *HttpHandlerSuite) TestSubmitErrors() {
	require := s.Require()

	rec, err := doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/themes/1/exercises/1/submissions",
		SubmitRequest{Query: "  "}, nil)
	require.NoError(err)
	require.Equal(http.StatusBadRequest, rec.Code)

	rec, err = doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/themes/5/exercises/1/submissions",
		SubmitRequest{Query: "SELECT 1"}, nil)
	require.NoError(err)
	require.Equal(http.StatusNotFound, rec.Code)

	rec, err = doSimpleJSONRequest(s.router, http.MethodGet, "/api/v1/submissions?limit=0", nil, nil)
	require.NoError(err)
	require.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HttpHandlerSuite) TestQuery() {
	require := s.Require()

	var resp QueryResponse
	rec, err := doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/query",
		QueryRequest{Query: "SELECT name FROM departments ORDER BY id"}, &resp)
	require.NoError(err)
	require.Equal(http.StatusOK, rec.Code)
	require.NotNil(resp.Result)
	require.Equal([]string{"name"}, resp.Result.Columns)

	resp = QueryResponse{}
	rec, err = doSimpleJSONRequest(s.router, http.MethodPost, "/api/v1/query",
		QueryRequest{Query: "DROP TABLE employees"}, &resp)
	require.NoError(err)
	require.Equal(http.StatusBadRequest, rec.Code)
	require.NotEmpty(resp.Error)
}
