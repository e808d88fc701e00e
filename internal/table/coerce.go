package table

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Placeholder is the token the source spreadsheets use for "no data"
const Placeholder = "."

// CoerceError reports a cell that is neither a number nor a missing marker
type CoerceError struct {
	Column string
	Row    int
	Text   string
	Err    error
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("column %s row %d: cannot parse %q as a number: %v", e.Column, e.Row, e.Text, e.Err)
}

func (e *CoerceError) Unwrap() error {
	return e.Err
}

// ParseNumber converts a spreadsheet cell to a nullable float. Blank cells
// and the placeholder are missing; thousands separators are ignored.
func ParseNumber(text string) (sql.NullFloat64, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == Placeholder {
		return sql.NullFloat64{}, nil
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil {
		return sql.NullFloat64{}, err
	}
	return sql.NullFloat64{Float64: v, Valid: true}, nil
}
