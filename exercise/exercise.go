package exercise

import (
	"fmt"
	"strings"

	"github.com/go-ozzo/ozzo-validation/v3"
)

type Theme struct {
	Number        int    `db:"theme"`
	Name          string `db:"theme_name"`
	ExerciseCount int    `db:"exercise_count"`
}

// Exercise is immutable once loaded. Question and Solution are read from the
// exercise directory; Restrictions from the main database.
type Exercise struct {
	Theme      int    `db:"theme"`
	ThemeName  string `db:"theme_name"`
	Number     int    `db:"exercise"`
	Title      string `db:"title"`
	CheckOrder bool   `db:"check_order"`
	SortBy     string `db:"sort_by"`
	Hint       string `db:"hint"`
	SchemaName string `db:"schema_name"`

	Question     string   `db:"-"`
	Solution     string   `db:"-"`
	Restrictions []string `db:"-"`
}

// Key identifies an exercise as "<theme>.<number>".
func (e *Exercise) Key() string {
	return Key(e.Theme, e.Number)
}

func Key(theme, number int) string {
	return fmt.Sprintf("%d.%d", theme, number)
}

func (e *Exercise) SortColumns() []string {
	return splitList(e.SortBy)
}

// record is one line of exercises.csv.
type record struct {
	Theme        int    `csv:"theme"`
	ThemeName    string `csv:"theme_name"`
	Exercise     int    `csv:"exercise"`
	Title        string `csv:"title"`
	CheckOrder   string `csv:"check_order"`
	SortBy       string `csv:"sort_by"`
	Restrictions string `csv:"restrictions"`
	Hint         string `csv:"hint"`
	SchemaName   string `csv:"database"`
}

func (r *record) Validate() error {
	return validation.ValidateStruct(
		r,
		validation.Field(&r.Theme, validation.Required, validation.Min(1)),
		validation.Field(&r.ThemeName, validation.Required),
		validation.Field(&r.Exercise, validation.Required, validation.Min(1)),
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.CheckOrder, validation.In("Y", "N")),
	)
}

// exercise converts r; an empty check_order means order matters.
func (r *record) exercise(defaultSchema string) Exercise {
	e := Exercise{
		Theme:        r.Theme,
		ThemeName:    strings.TrimSpace(r.ThemeName),
		Number:       r.Exercise,
		Title:        strings.TrimSpace(r.Title),
		CheckOrder:   r.CheckOrder != "N",
		SortBy:       strings.Join(splitList(r.SortBy), "|"),
		Hint:         strings.TrimSpace(r.Hint),
		SchemaName:   strings.TrimSpace(r.SchemaName),
		Restrictions: splitList(r.Restrictions),
	}
	if e.SchemaName == "" {
		e.SchemaName = defaultSchema
	}
	return e
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
