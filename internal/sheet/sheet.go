// Package sheet reads the first worksheet of a raw spreadsheet into a
// rectangular grid of text cells.
package sheet

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var (
	// ErrNotFound is returned when none of the candidate files exist
	ErrNotFound = errors.New("spreadsheet not found")

	// ErrEmptySheet indicates that the first worksheet has no rows
	ErrEmptySheet = errors.New("empty sheet")

	// ErrUnsupportedFormat is returned for extensions other than .xlsx and .xls
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

// Grid is the text content of one worksheet. The first sheet row is a
// banner and is kept apart from the rows that follow it.
type Grid struct {
	Path  string
	Sheet string
	Title []string
	Rows  [][]string
}

// Width returns the number of columns every row has been padded to
func (g *Grid) Width() int {
	if len(g.Rows) > 0 {
		return len(g.Rows[0])
	}
	return len(g.Title)
}

// Open reads dir/<stem><ext> for the first extension whose file exists.
// Only a missing file moves on to the next extension.
func Open(dir, stem string, exts ...string) (*Grid, error) {
	tried := make([]string, 0, len(exts))
	for _, ext := range exts {
		path := filepath.Join(dir, stem+ext)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				tried = append(tried, path)
				continue
			}
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		return Read(path)
	}
	return nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(tried, ", "))
}

// Read loads the first worksheet of path, choosing the reader by extension
func Read(path string) (*Grid, error) {
	var (
		name string
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		name, rows, err = readXLSX(path)
	case ".xls":
		name, rows, err = readXLS(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}

	return newGrid(path, name, rows)
}

func readXLSX(path string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("%w: %s has no worksheets", ErrEmptySheet, path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", nil, fmt.Errorf("get rows for sheet %q: %w", sheets[0], err)
	}
	return sheets[0], rows, nil
}

func readXLS(path string) (string, [][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("failed to open file: %w", err)
	}
	if wb.NumSheets() == 0 {
		return "", nil, fmt.Errorf("%w: %s has no worksheets", ErrEmptySheet, path)
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return "", nil, fmt.Errorf("%w: %s has no readable worksheet", ErrEmptySheet, path)
	}

	rows := make([][]string, 0, int(ws.MaxRow)+1)
	for i := 0; i <= int(ws.MaxRow); i++ {
		row := xlsRow(ws, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}

		// LastCol is one past the last cell; rows without a ROW record report 0
		width := row.LastCol()
		if width == 0 {
			width = xlsMaxCols
		}
		cells := make([]string, width)
		for j := range cells {
			cells[j] = row.Col(j)
		}
		for len(cells) > 0 && cells[len(cells)-1] == "" {
			cells = cells[:len(cells)-1]
		}
		rows = append(rows, cells)
	}
	return ws.Name, rows, nil
}

// xlsMaxCols is the BIFF8 column limit
const xlsMaxCols = 256

// xlsRow returns row i, or nil when the sheet stores nothing for it.
// WorkSheet.Row dereferences the missing row and panics.
func xlsRow(ws *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return ws.Row(i)
}

func newGrid(path, name string, rows [][]string) (*Grid, error) {
	// Trailing blank rows carry nothing and would shift the footer
	for len(rows) > 0 && blank(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, path)
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	padded := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, width)
		copy(cells, row)
		padded[i] = cells
	}

	return &Grid{
		Path:  path,
		Sheet: name,
		Title: padded[0],
		Rows:  padded[1:],
	}, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
