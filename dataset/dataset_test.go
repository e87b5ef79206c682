package dataset

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReadCSVSemicolon(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("col1;col2\n1;a\n2;b\n3;c\n"))
	require.NoError(t, err)

	require.Len(t, table.Columns, 2)
	assert.Equal(t, Column{Name: "col1", Type: IntegerColumn}, table.Columns[0])
	assert.Equal(t, Column{Name: "col2", Type: TextColumn}, table.Columns[1])
	assert.Len(t, table.Rows, 3)
}

func TestReadCSVComma(t *testing.T) {
	data := "id,name,age,department,salary\n1,Fabrice,29,2,60000\n2,Karima,34,1,49000.5\n"
	table, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)

	var names []string
	for _, c := range table.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "name", "age", "department", "salary"}, names)
	assert.Equal(t, RealColumn, table.Columns[4].Type)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader("a,A\n1,2\n"))
	assert.Error(t, err)
}

func TestInferTypeEmptyColumn(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("id,note\n1,\n2,\n"))
	require.NoError(t, err)
	assert.Equal(t, TextColumn, table.Columns[1].Type)
	assert.Nil(t, table.Value(table.Rows[0], 1))
	assert.Equal(t, int64(2), table.Value(table.Rows[1], 0))
}

func TestNames(t *testing.T) {
	assert.Equal(t, "employees", TableName(filepath.Join("data", "Employees.csv")))
	assert.Equal(t, "first_name", ColumnName(" First Name "))
	assert.Equal(t, "t_2021_sales", ColumnName("2021 sales"))
}

func openTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadFile(t *testing.T) {
	db := openTestDB(t)
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, ioutil.WriteFile(path, []byte("col1;col2\n1;a\n2;b\n3;\n"), 0o644))

	loader := NewLoader(zap.NewNop(), db)
	n, err := loader.LoadFile(context.Background(), path, "test_table")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM test_table"))
	assert.Equal(t, 3, count)

	var nulls int
	require.NoError(t, db.Get(&nulls, "SELECT COUNT(*) FROM test_table WHERE col2 IS NULL"))
	assert.Equal(t, 1, nulls)

	// loading again replaces the table
	_, err = loader.LoadFile(context.Background(), path, "test_table")
	require.NoError(t, err)
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM test_table"))
	assert.Equal(t, 3, count)
}

func TestLoadDir(t *testing.T) {
	db := openTestDB(t)
	loader := NewLoader(zap.NewNop(), db)

	tables, err := loader.LoadDir(context.Background(), filepath.Join("..", "data"))
	require.NoError(t, err)
	assert.Equal(t, []string{"departments", "employees"}, tables)

	var rows []struct {
		Name   string  `db:"name"`
		Salary float64 `db:"salary"`
	}
	require.NoError(t, db.Select(&rows, "SELECT name, salary FROM employees WHERE department = 1 ORDER BY id"))
	require.Len(t, rows, 5)
	assert.Equal(t, "Fabrice", rows[0].Name)
	assert.Equal(t, 72000.5, rows[1].Salary)
}

func TestLoadDirWithoutFiles(t *testing.T) {
	loader := NewLoader(zap.NewNop(), openTestDB(t))
	_, err := loader.LoadDir(context.Background(), t.TempDir())
	assert.Error(t, err)
}
