package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrepareSelectionSolution(t *testing.T) {
	assert.Equal(t, "SELECT 1", prepareSelectionSolution("  SELECT 1;\n"))
	assert.Equal(t, "SELECT 1", prepareSelectionSolution("SELECT 1 ; ;"))
	assert.Equal(t, "select 'it'", prepareSelectionSolution("select 'it'"))
	assert.Equal(t, "SELECT 1", prepareSelectionSolution("SELECT 1; -- done"))
	assert.Equal(t, "SELECT 1", prepareSelectionSolution("SELECT 1 /* a */;\n-- b\n;"))
	assert.Equal(t, "SELECT '--;' AS x", prepareSelectionSolution("SELECT '--;' AS x -- note"))
	assert.Equal(t, "SELECT a\n-- inner\nFROM b", prepareSelectionSolution("SELECT a\n-- inner\nFROM b;"))
	assert.Empty(t, prepareSelectionSolution("-- nothing"))
}

func TestCheckSelectionTrailingComment(t *testing.T) {
	for _, query := range []string{
		"SELECT 1; -- done",
		"SELECT name FROM employees ORDER BY id;\n/* end */",
	} {
		assert.NoError(t, checkSelection(prepareSelectionSolution(query)), query)
		assert.NoError(t, checkSelection(query), query)
	}
	assert.Equal(t, errMultipleStatements, checkSelection(prepareSelectionSolution("SELECT 1; -- x\nDROP TABLE employees")))
}

func TestCheckSelection(t *testing.T) {
	tests := []struct {
		query string
		err   error
	}{
		{"SELECT * FROM employees", nil},
		{"select name from employees", nil},
		{"WITH it AS (SELECT * FROM employees) SELECT * FROM it", nil},
		{"(SELECT 1) UNION (SELECT 2)", nil},
		{"-- all of them\nSELECT * FROM employees", nil},
		{"SELECT ';' AS sep", nil},
		{"", errEmptySolution},
		{"-- nothing", errEmptySolution},
		{"DELETE FROM employees", errNotSelection},
		{"/* SELECT */ DROP TABLE employees", errNotSelection},
		{"SELECT 1; DROP TABLE employees", errMultipleStatements},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.err, checkSelection(tt.query))
		})
	}
}

func TestViolatedRestriction(t *testing.T) {
	restrictions := []string{"JOIN", "group by"}

	assert.Equal(t, "JOIN", violatedRestriction("SELECT * FROM a LEFT JOIN b ON a.id = b.id", restrictions))
	assert.Equal(t, "group by", violatedRestriction("SELECT d, COUNT(*) FROM a group by d", restrictions))
	assert.Empty(t, violatedRestriction("SELECT joined_at FROM a", restrictions))
	assert.Empty(t, violatedRestriction("SELECT 'join' AS word FROM a", restrictions))
	assert.Empty(t, violatedRestriction("SELECT 1 -- no JOIN here", restrictions))
	assert.Empty(t, violatedRestriction("SELECT 1", nil))
}
