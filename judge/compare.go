package judge

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Tolerance bounds the difference accepted between two numbers. Values are
// equal when they differ by at most Absolute, or by at most Relative times
// the larger magnitude.
type Tolerance struct {
	Absolute float64 `json:"absolute"`
	Relative float64 `json:"relative"`
}

var DefaultTolerance = Tolerance{Absolute: 1e-6, Relative: 1e-9}

func (t Tolerance) Within(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	diff := math.Abs(a - b)
	if diff <= t.Absolute {
		return true
	}
	return diff <= t.Relative*math.Max(math.Abs(a), math.Abs(b))
}

// Options is the per-exercise comparison policy.
type Options struct {
	// OrderSensitive compares rows as ordered sequences.
	OrderSensitive bool
	// SortBy names leading sort keys used when rows are compared as sets.
	SortBy []string
	// CheckColumnNames also requires column names to match, ignoring case.
	CheckColumnNames bool
	Tolerance        Tolerance
}

// Execution is the outcome of running one query: a table, or the error the
// database returned for it.
type Execution struct {
	Table *ResultTable
	Err   error
}

// Judge compares two executions. Execution errors become verdicts; they are
// never compared as empty results.
func Judge(expected, actual Execution, opts Options) Verdict {
	if expected.Err != nil {
		v := failed(ExecutionError, "reference query execution failed")
		v.Error = expected.Err.Error()
		return v
	}
	if actual.Err != nil {
		return executionFailed(actual.Err.Error())
	}
	return Compare(expected.Table, actual.Table, opts)
}

// Compare decides whether actual matches expected under opts. It never
// modifies either table.
func Compare(expected, actual *ResultTable, opts Options) Verdict {
	if expected == nil {
		return failed(ExecutionError, "reference query execution failed")
	}
	if actual == nil {
		return executionFailed("")
	}
	if err := expected.Validate(); err != nil {
		return malformed("expected", err)
	}
	if err := actual.Validate(); err != nil {
		return malformed("actual", err)
	}

	if len(expected.Rows) != len(actual.Rows) {
		return failed(RowCountMismatch, fmt.Sprintf(
			"row count mismatch: expected %d rows, got %d", len(expected.Rows), len(actual.Rows)))
	}
	if len(expected.Columns) != len(actual.Columns) {
		return failed(ColumnCountMismatch, fmt.Sprintf(
			"column count mismatch: expected %d columns, got %d", len(expected.Columns), len(actual.Columns)))
	}
	if opts.CheckColumnNames {
		for i, name := range expected.Columns {
			if !strings.EqualFold(name, actual.Columns[i]) {
				v := failed(ColumnNameMismatch, fmt.Sprintf(
					"column %d should be named %q, got %q", i, name, actual.Columns[i]))
				v.Column = i
				v.ColumnName = name
				return v
			}
		}
	}

	keys := sortKeys(expected, opts.SortBy)
	if opts.OrderSensitive {
		v, ok := firstMismatch(expected.Columns, expected.Rows, actual.Rows, opts.Tolerance, false)
		if ok {
			return accepted()
		}
		if sameRows(expected, actual, keys, opts.Tolerance) {
			return failed(IncorrectOrder, "rows are correct but in the wrong order")
		}
		return v
	}

	exp := sortedRows(expected, keys, opts.Tolerance)
	act := sortedRows(actual, keys, opts.Tolerance)
	v, ok := firstMismatch(expected.Columns, exp, act, opts.Tolerance, true)
	if ok || matchRows(exp, act, opts.Tolerance) {
		return accepted()
	}
	return v
}

// sameRows reports whether both tables hold the same rows in any order.
func sameRows(expected, actual *ResultTable, keys []int, tol Tolerance) bool {
	exp := sortedRows(expected, keys, tol)
	act := sortedRows(actual, keys, tol)
	if _, ok := firstMismatch(expected.Columns, exp, act, tol, true); ok {
		return true
	}
	return matchRows(exp, act, tol)
}

// matchRows pairs every expected row with a distinct equal actual row. It
// catches multisets that are equal under tolerance but sort differently.
func matchRows(expected, actual [][]Value, tol Tolerance) bool {
	used := make([]bool, len(actual))
	for _, e := range expected {
		found := false
		for i, a := range actual {
			if !used[i] && equalRows(e, a, tol) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalRows(a, b []Value, tol Tolerance) bool {
	for i := range a {
		if !equalValues(a[i], b[i], tol) {
			return false
		}
	}
	return true
}

func firstMismatch(columns []string, expected, actual [][]Value, tol Tolerance, sorted bool) (Verdict, bool) {
	for i := range expected {
		for j := range expected[i] {
			e, a := expected[i][j], actual[i][j]
			if equalValues(e, a, tol) {
				continue
			}
			where := fmt.Sprintf("row %d", i)
			if sorted {
				where += " (after sorting)"
			}
			v := failed(IncorrectContent, fmt.Sprintf(
				"column %q (#%d) differs at %s: expected %s, got %s",
				columns[j], j, where, e.quoted(), a.quoted()))
			v.Row = i
			v.Column = j
			v.ColumnName = columns[j]
			return v, false
		}
	}
	return Verdict{}, true
}

func equalValues(a, b Value, tol Tolerance) bool {
	switch {
	case a.IsNull() || b.IsNull():
		return a.IsNull() && b.IsNull()
	case a.Kind == Integer && b.Kind == Integer:
		return a.Int == b.Int
	case a.IsNumeric() && b.IsNumeric():
		return tol.Within(a.Float(), b.Float())
	case a.Kind == Text && b.Kind == Text:
		return a.Str == b.Str
	default:
		return false
	}
}

func kindRank(v Value) int {
	switch {
	case v.IsNull():
		return 0
	case v.IsNumeric():
		return 1
	default:
		return 2
	}
}

// compareValues is a total order: null < NaN < number < text. Numbers
// within tol compare equal.
func compareValues(a, b Value, tol Tolerance) int {
	if ra, rb := kindRank(a), kindRank(b); ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch {
	case a.IsNull():
		return 0
	case a.Kind == Integer && b.Kind == Integer:
		switch {
		case a.Int < b.Int:
			return -1
		case a.Int > b.Int:
			return 1
		}
		return 0
	case a.IsNumeric():
		fa, fb := a.Float(), b.Float()
		switch na, nb := math.IsNaN(fa), math.IsNaN(fb); {
		case na && nb:
			return 0
		case na:
			return -1
		case nb:
			return 1
		}
		switch {
		case tol.Within(fa, fb):
			return 0
		case fa < fb:
			return -1
		}
		return 1
	default:
		return strings.Compare(a.Str, b.Str)
	}
}

// sortKeys resolves sortBy against the expected columns, then appends every
// column so that the whole tuple breaks ties. Both tables are sorted with the
// same positions, whatever the actual columns are called.
func sortKeys(expected *ResultTable, sortBy []string) []int {
	keys := make([]int, 0, len(sortBy)+len(expected.Columns))
	for _, name := range sortBy {
		if i := expected.ColumnIndex(name); i >= 0 {
			keys = append(keys, i)
		}
	}
	for i := range expected.Columns {
		keys = append(keys, i)
	}
	return keys
}

// sortedRows returns a copy of t's rows sorted by the column positions keys.
func sortedRows(t *ResultTable, keys []int, tol Tolerance) [][]Value {
	rows := make([][]Value, len(t.Rows))
	copy(rows, t.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			if c := compareValues(rows[i][k], rows[j][k], tol); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return rows
}
