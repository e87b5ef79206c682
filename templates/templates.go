// Package templates holds the SQL run against the main database.
// Placeholders are written with ? and rebound by sqlx for the driver in use.
package templates

const CreateExercises = `
CREATE TABLE IF NOT EXISTS exercises (
	theme       INTEGER NOT NULL,
	theme_name  TEXT    NOT NULL,
	exercise    INTEGER NOT NULL,
	title       TEXT    NOT NULL,
	check_order INTEGER NOT NULL,
	sort_by     TEXT    NOT NULL,
	hint        TEXT    NOT NULL,
	schema_name TEXT    NOT NULL,
	PRIMARY KEY (theme, exercise)
)`

const CreateExerciseRestrictions = `
CREATE TABLE IF NOT EXISTS exercise_restrictions (
	theme       INTEGER NOT NULL,
	exercise    INTEGER NOT NULL,
	restriction TEXT    NOT NULL
)`

const CreateSubmissions = `
CREATE TABLE IF NOT EXISTS submissions (
	submission_id    TEXT    PRIMARY KEY,
	theme            INTEGER NOT NULL,
	exercise         INTEGER NOT NULL,
	solution         TEXT    NOT NULL,
	status_id        INTEGER NOT NULL,
	reviewer_message TEXT    NOT NULL,
	created_at       TEXT    NOT NULL
)`

const ClearExercises = `DELETE FROM exercises`

const ClearExerciseRestrictions = `DELETE FROM exercise_restrictions`

const InsertExercise = `
INSERT INTO exercises (theme, theme_name, exercise, title, check_order, sort_by, hint, schema_name)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

const InsertExerciseRestriction = `
INSERT INTO exercise_restrictions (theme, exercise, restriction) VALUES (?, ?, ?)`

const FetchThemes = `
SELECT theme, theme_name, COUNT(*) AS exercise_count
FROM exercises
GROUP BY theme, theme_name
ORDER BY theme`

const FetchThemeExercises = `
SELECT theme, theme_name, exercise, title, check_order, sort_by, hint, schema_name
FROM exercises
WHERE theme = ?
ORDER BY exercise`

const FetchExercise = `
SELECT theme, theme_name, exercise, title, check_order, sort_by, hint, schema_name
FROM exercises
WHERE theme = ? AND exercise = ?`

const FetchTaskRestrictions = `
SELECT restriction
FROM exercise_restrictions
WHERE theme = ? AND exercise = ?
ORDER BY restriction`

const InsertSubmission = `
INSERT INTO submissions (submission_id, theme, exercise, solution, status_id, reviewer_message, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

const FetchSubmissions = `
SELECT submission_id, theme, exercise, solution, status_id, reviewer_message, created_at
FROM submissions
ORDER BY created_at DESC
LIMIT ?`
