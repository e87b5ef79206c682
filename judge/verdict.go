package judge

import (
	"encoding/json"
	"fmt"
)

type Status int

const (
	Unknown Status = iota
	Accepted
	ExecutionError
	RestrictionViolated
	IncorrectContent
	IncorrectOrder
	RowCountMismatch
	ColumnCountMismatch
	ColumnNameMismatch
	MalformedResult
)

var statusNames = map[Status]string{
	Unknown:             "unknown",
	Accepted:            "accepted",
	ExecutionError:      "execution_error",
	RestrictionViolated: "restriction_violated",
	IncorrectContent:    "incorrect_content",
	IncorrectOrder:      "incorrect_order",
	RowCountMismatch:    "row_count_mismatch",
	ColumnCountMismatch: "column_count_mismatch",
	ColumnNameMismatch:  "column_name_mismatch",
	MalformedResult:     "malformed_result",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown verdict status %q", name)
}

// Verdict is the outcome of reviewing one solution. Row and Column locate the
// first mismatching cell and are -1 when the failure is not tied to a cell.
type Verdict struct {
	Status          Status `json:"status"`
	ReviewerMessage string `json:"message"`
	Error           string `json:"error,omitempty"`
	Row             int    `json:"row"`
	Column          int    `json:"column"`
	ColumnName      string `json:"column_name,omitempty"`
}

func (v Verdict) Passed() bool {
	return v.Status == Accepted
}

func accepted() Verdict {
	return Verdict{
		Status:          Accepted,
		ReviewerMessage: "correct answer",
		Row:             -1,
		Column:          -1,
	}
}

func failed(status Status, message string) Verdict {
	return Verdict{
		Status:          status,
		ReviewerMessage: message,
		Row:             -1,
		Column:          -1,
	}
}

func executionFailed(errText string) Verdict {
	v := failed(ExecutionError, "query execution failed")
	v.Error = errText
	return v
}

func malformed(side string, err error) Verdict {
	return failed(MalformedResult, "malformed "+side+" result: "+err.Error())
}
