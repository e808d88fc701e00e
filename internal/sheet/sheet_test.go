package sheet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, path string, rows [][]string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheetName, cell, value))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadXLSXSplitsTitleAndPads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sales_Ult_Cust_2020.xlsx")
	writeWorkbook(t, path, [][]string{
		{"Utility Characteristics", "", "RESIDENTIAL"},
		{"Data Year", "Utility Number", "Thousand Dollars", "Megawatthours"},
		{"2020", "34"},
		{"", "", "", ""},
	})

	grid, err := Read(path)
	require.NoError(t, err)

	assert.Equal(t, path, grid.Path)
	assert.Equal(t, "Sheet1", grid.Sheet)
	assert.Equal(t, []string{"Utility Characteristics", "", "RESIDENTIAL", ""}, grid.Title)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, []string{"2020", "34", "", ""}, grid.Rows[1])
	assert.Equal(t, 4, grid.Width())
}

func TestOpenTriesExtensionsInOrder(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "Reliability_2019.xlsx"), [][]string{
		{"banner"},
		{"Data Year"},
	})

	grid, err := Open(dir, "Reliability_2019", ".xlsm", ".xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Reliability_2019.xlsx"), grid.Path)
}

func TestOpenPrefersPrimaryExtension(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "Sales_Ult_Cust_2012.xlsx"), [][]string{{"primary"}, {"x"}})
	writeWorkbook(t, filepath.Join(dir, "Sales_Ult_Cust_2012.xlsm"), [][]string{{"secondary"}, {"x"}})

	grid, err := Open(dir, "Sales_Ult_Cust_2012", ".xlsx", ".xlsm")
	require.NoError(t, err)
	assert.Equal(t, "primary", grid.Title[0])
}

func TestOpenNothingFound(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(dir, "Sales_Ult_Cust_2011", ".xlsx", ".xls")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), filepath.Join(dir, "Sales_Ult_Cust_2011.xlsx"))
	assert.Contains(t, err.Error(), filepath.Join(dir, "Sales_Ult_Cust_2011.xls"))
}

func TestReadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadEmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	writeWorkbook(t, path, nil)

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrEmptySheet)
}

func TestNewGridDropsTrailingBlankRows(t *testing.T) {
	grid, err := newGrid("mem", "S", [][]string{
		{"banner"},
		{"a", "b"},
		{"footer"},
		{" ", ""},
		nil,
	})
	require.NoError(t, err)
	require.Len(t, grid.Rows, 2)
	assert.Equal(t, []string{"footer", ""}, grid.Rows[1])
}

func copyFixture(t *testing.T, name, dir string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
}

func TestOpenFallsBackToXLS(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, "Sales_Ult_Cust_2009.xls", dir)

	grid, err := Open(dir, "Sales_Ult_Cust_2009", ".xlsx", ".xls")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Sales_Ult_Cust_2009.xls"), grid.Path)
	assert.Equal(t, "Sales", grid.Sheet)
	assert.Equal(t, []string{"Sales to Ultimate Customers 2009", "", ""}, grid.Title)
	assert.Equal(t, 3, grid.Width())
	assert.Equal(t, [][]string{
		{"Utility Characteristics", "", "RESIDENTIAL"},
		{"Data Year", "Utility Number", "Thousand Dollars"},
		{"2009", "34", "1,234"},
		{"", "", ""},
		{"2009", "35", "."},
		{"Footnote", "", ""},
	}, grid.Rows)
}

func TestReadXLSMissingRowIsBlank(t *testing.T) {
	grid, err := Read(filepath.Join("testdata", "Sales_Ult_Cust_2009.xls"))
	require.NoError(t, err)

	// the workbook stores no record for sheet row 5
	require.Len(t, grid.Rows, 6)
	assert.Equal(t, []string{"", "", ""}, grid.Rows[3])
	assert.Equal(t, "2009", grid.Rows[2][0], "numeric cells render without a decimal part")
}
