// Package output writes combined tables to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/gridsales/internal/table"
)

// FileName returns the combined spreadsheet name for a dataset, e.g. all_sales.xlsx
func FileName(dataset string) string {
	return "all_" + dataset + ".xlsx"
}

// WriteXLSX writes t to path as a single sheet with a header row.
// Missing values are left as blank cells.
func WriteXLSX(path, sheetName string, t *table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	header := make([]interface{}, t.Width())
	for i, name := range t.Names() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i := 0; i < t.Len(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, t.Row(i)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
