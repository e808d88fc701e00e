package normalize

import (
	"fmt"
	"strings"

	"github.com/jgoulah/gridsales/pkg/models"
)

// ShortForm is the reliability column that only some years carry
const ShortForm = "Short Form"

// ReliabilityTrailRows is the footer row count of reliability sheets
const ReliabilityTrailRows = 1

// ReliabilityLayout describes where the labels and data of one reliability
// sheet live.
type ReliabilityLayout struct {
	HeaderRow int   // grid row holding the column labels
	Keep      []int // grid columns mapped onto models.ReliabilityColumns
	ShortForm bool  // the window included a Short Form column
}

// LeadRows is the number of grid rows before the first data row
func (l ReliabilityLayout) LeadRows() int {
	return l.HeaderRow + 1
}

// ReliabilityHeaderRow returns the label row for year: sheets before cutoff
// label their columns on the first grid row, later sheets on the second.
func ReliabilityHeaderRow(year, cutoff int) int {
	if year < cutoff {
		return 0
	}
	return 1
}

// NewReliabilityLayout resolves the column window for a reliability sheet.
// The window is the first eight columns, or nine when one of them is the
// Short Form column, which is then left out.
func NewReliabilityLayout(rows [][]string, year, cutoff int) (ReliabilityLayout, error) {
	layout := ReliabilityLayout{HeaderRow: ReliabilityHeaderRow(year, cutoff)}
	if len(rows) <= layout.HeaderRow {
		return layout, fmt.Errorf("missing header row %d (sheet has %d rows)", layout.HeaderRow, len(rows))
	}
	header := rows[layout.HeaderRow]
	want := len(models.ReliabilityColumns)

	// labels are compared trimmed, so "Short Form " still counts
	window := want
	for _, cell := range header {
		if strings.TrimSpace(cell) == ShortForm {
			window = want + 1
			layout.ShortForm = true
			break
		}
	}
	if len(header) < window {
		return layout, fmt.Errorf("header row has %d columns, need %d", len(header), window)
	}

	for i := 0; i < window; i++ {
		if layout.ShortForm && strings.TrimSpace(header[i]) == ShortForm {
			continue
		}
		layout.Keep = append(layout.Keep, i)
	}
	if len(layout.Keep) != want {
		// Short Form sits beyond the ninth column
		return layout, fmt.Errorf("column window %v does not map onto %d reliability columns", layout.Keep, want)
	}
	return layout, nil
}

// Project returns rows reduced to the kept columns
func (l ReliabilityLayout) Project(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(l.Keep))
		for j, col := range l.Keep {
			if col < len(row) {
				cells[j] = row[col]
			}
		}
		out[i] = cells
	}
	return out
}
