// Package dataset loads CSV files into a practice database, one table per file.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

type ColumnType int

const (
	IntegerColumn ColumnType = iota
	RealColumn
	TextColumn
)

// SQL returns a type name understood by SQLite, MySQL, PostgreSQL and Oracle.
func (t ColumnType) SQL() string {
	switch t {
	case IntegerColumn:
		return "INTEGER"
	case RealColumn:
		return "DOUBLE PRECISION"
	default:
		return "VARCHAR(255)"
	}
}

type Column struct {
	Name string
	Type ColumnType
}

// Table is a parsed CSV file. Empty fields are NULL.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]string
}

var ErrNoHeader = errors.New("csv file has no header")

// ReadCSV parses a header line followed by records. The delimiter is ';' if
// the header contains more semicolons than commas, ',' otherwise.
func ReadCSV(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(head)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := records[0]
	columns := make([]Column, len(header))
	seen := map[string]bool{}
	for i, name := range header {
		name = ColumnName(name)
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		columns[i] = Column{Name: name}
	}

	rows := records[1:]
	for i := range columns {
		columns[i].Type = inferType(rows, i)
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

func detectDelimiter(header []byte) rune {
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		return ';'
	}
	return ','
}

func inferType(rows [][]string, column int) ColumnType {
	t := IntegerColumn
	values := 0
	for _, row := range rows {
		v := strings.TrimSpace(row[column])
		if v == "" {
			continue
		}
		values++
		if t == IntegerColumn {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			t = RealColumn
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return TextColumn
		}
	}
	if values == 0 {
		return TextColumn
	}
	return t
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9_]+`)

// ColumnName turns a header or file name into a lower-case SQL identifier.
func ColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "t_" + name
	}
	return name
}

// TableName derives the table name from a CSV file path.
func TableName(path string) string {
	base := filepath.Base(path)
	return ColumnName(strings.TrimSuffix(base, filepath.Ext(base)))
}

// Value converts a CSV field into the value inserted for column i.
func (t *Table) Value(row []string, i int) interface{} {
	v := strings.TrimSpace(row[i])
	if v == "" {
		return nil
	}
	switch t.Columns[i].Type {
	case IntegerColumn:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case RealColumn:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return row[i]
	}
}
