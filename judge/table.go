package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	Null Kind = iota
	Integer
	Real
	Text
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a single result cell.
type Value struct {
	Kind Kind
	Int  int64
	Num  float64
	Str  string
}

func NullValue() Value { return Value{Kind: Null} }

func IntValue(i int64) Value { return Value{Kind: Integer, Int: i} }

func RealValue(f float64) Value { return Value{Kind: Real, Num: f} }

func TextValue(s string) Value { return Value{Kind: Text, Str: s} }

func (v Value) IsNull() bool { return v.Kind == Null }

func (v Value) IsNumeric() bool { return v.Kind == Integer || v.Kind == Real }

// Float returns the numeric value of v, or NaN if v is not numeric.
func (v Value) Float() float64 {
	switch v.Kind {
	case Integer:
		return float64(v.Int)
	case Real:
		return v.Num
	default:
		return math.NaN()
	}
}

func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Integer:
		return strconv.FormatInt(v.Int, 10)
	case Real:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	default:
		return v.Str
	}
}

// quoted renders v for diagnostics, quoting text so that "5" and 5 differ.
func (v Value) quoted() string {
	if v.Kind == Text {
		return strconv.Quote(v.Str)
	}
	return v.String()
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Null:
		return []byte("null"), nil
	case Integer:
		return json.Marshal(v.Int)
	case Real:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return json.Marshal(v.String())
		}
		return json.Marshal(v.Num)
	default:
		return json.Marshal(v.Str)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	d := json.NewDecoder(bytes.NewReader(data))
	d.UseNumber()
	if err := d.Decode(&raw); err != nil {
		return err
	}

	switch x := raw.(type) {
	case nil:
		*v = NullValue()
	case json.Number:
		if i, err := x.Int64(); err == nil {
			*v = IntValue(i)
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return err
		}
		*v = RealValue(f)
	case string:
		*v = TextValue(x)
	default:
		return fmt.Errorf("unsupported cell value %s", data)
	}
	return nil
}

// NewValue converts a value returned by a database/sql driver. dbType is the
// column's DatabaseTypeName; numeric columns delivered as text (DECIMAL in
// MySQL and Postgres, NUMBER in Oracle) are parsed into numbers.
func NewValue(raw interface{}, dbType string) Value {
	switch v := raw.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntValue(v)
	case int32:
		return IntValue(int64(v))
	case int:
		return IntValue(int64(v))
	case uint64:
		if v > math.MaxInt64 {
			return RealValue(float64(v))
		}
		return IntValue(int64(v))
	case float64:
		return RealValue(v)
	case float32:
		return RealValue(float64(v))
	case bool:
		if v {
			return IntValue(1)
		}
		return IntValue(0)
	case time.Time:
		return TextValue(v.Format(time.RFC3339Nano))
	case []byte:
		return textOrNumber(string(v), dbType)
	case string:
		return textOrNumber(v, dbType)
	default:
		return textOrNumber(fmt.Sprint(v), dbType)
	}
}

func textOrNumber(s, dbType string) Value {
	if !isNumericType(dbType) {
		return TextValue(s)
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return TextValue(s)
	}
	if d.Equal(d.Truncate(0)) {
		i := d.IntPart()
		if decimal.NewFromInt(i).Equal(d) {
			return IntValue(i)
		}
	}
	f, _ := d.Float64()
	return RealValue(f)
}

var numericTypes = []string{"INT", "DECIMAL", "NUMERIC", "NUMBER", "DOUBLE", "FLOAT", "REAL"}

func isNumericType(dbType string) bool {
	dbType = strings.ToUpper(dbType)
	for _, t := range numericTypes {
		if strings.Contains(dbType, t) {
			return true
		}
	}
	return false
}

// ResultTable is the tabular output of one query.
type ResultTable struct {
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

func NewResultTable(columns []string, rows ...[]Value) *ResultTable {
	return &ResultTable{Columns: columns, Rows: rows}
}

// Validate reports the first row whose width differs from the header.
func (t *ResultTable) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, header has %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}

func (t *ResultTable) RowCount() int { return len(t.Rows) }

func (t *ResultTable) ColumnCount() int { return len(t.Columns) }

// ColumnIndex returns the position of the named column, matched
// case-insensitively, or -1.
func (t *ResultTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c, name) {
			return i
		}
	}
	return -1
}

// Strings renders every cell, for printing.
func (t *ResultTable) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			out[i][j] = v.String()
		}
	}
	return out
}
