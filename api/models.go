package api

import (
	"github.com/elmanelman/sql-trainer/exercise"
	"github.com/elmanelman/sql-trainer/judge"
)

type Theme struct {
	Number        int    `json:"number"`
	Name          string `json:"name"`
	ExerciseCount int    `json:"exercise_count"`
}

type ListThemesResponse struct {
	Themes []Theme `json:"themes"`
}

type Exercise struct {
	Key          string   `json:"key"`
	Theme        int      `json:"theme"`
	ThemeName    string   `json:"theme_name"`
	Number       int      `json:"exercise"`
	Title        string   `json:"title"`
	CheckOrder   bool     `json:"check_order"`
	Database     string   `json:"database"`
	Question     string   `json:"question,omitempty"`
	Restrictions []string `json:"restrictions,omitempty"`
	Solution     string   `json:"solution,omitempty"`
}

type ListExercisesResponse struct {
	Exercises []Exercise `json:"exercises"`
}

type SubmitRequest struct {
	Query string `json:"query"`
}

type Submission struct {
	ID        string        `json:"id"`
	Exercise  string        `json:"exercise"`
	Query     string        `json:"query"`
	Verdict   judge.Verdict `json:"verdict"`
	Hint      string        `json:"hint,omitempty"`
	CreatedAt string        `json:"created_at"`
}

type ListSubmissionsResponse struct {
	Submissions []Submission `json:"submissions"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Result *judge.ResultTable `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func toTheme(t exercise.Theme) Theme {
	return Theme{
		Number:        t.Number,
		Name:          t.Name,
		ExerciseCount: t.ExerciseCount,
	}
}

func toExercise(e *exercise.Exercise) Exercise {
	return Exercise{
		Key:          e.Key(),
		Theme:        e.Theme,
		ThemeName:    e.ThemeName,
		Number:       e.Number,
		Title:        e.Title,
		CheckOrder:   e.CheckOrder,
		Database:     e.SchemaName,
		Question:     e.Question,
		Restrictions: e.Restrictions,
	}
}

func toSubmission(s *judge.Submission) Submission {
	return Submission{
		ID:        s.SubmissionID,
		Exercise:  exercise.Key(s.Theme, s.Exercise),
		Query:     s.Solution,
		Verdict:   s.Verdict,
		CreatedAt: s.CreatedAt,
	}
}
