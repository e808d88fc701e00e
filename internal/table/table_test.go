package table

import (
	"database/sql"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  sql.NullFloat64
	}{
		{name: "thousands separator", input: "1,234", want: sql.NullFloat64{Float64: 1234, Valid: true}},
		{name: "millions", input: "12,345,678.5", want: sql.NullFloat64{Float64: 12345678.5, Valid: true}},
		{name: "placeholder", input: ".", want: sql.NullFloat64{}},
		{name: "padded placeholder", input: " . ", want: sql.NullFloat64{}},
		{name: "blank", input: "", want: sql.NullFloat64{}},
		{name: "negative", input: "-3.25", want: sql.NullFloat64{Float64: -3.25, Valid: true}},
		{name: "zero", input: "0", want: sql.NullFloat64{Float64: 0, Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseNumberRejectsText(t *testing.T) {
	_, err := ParseNumber("N/A")
	assert.Error(t, err)
}

func sample(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromRows(
		[]string{"state", "saidi", "extra"},
		[][]string{
			{"NY", "1,234", "x"},
			{"VT", ".", "y"},
			{"ME"},
		},
	)
	require.NoError(t, err)
	return tbl
}

func TestFromRows(t *testing.T) {
	tbl := sample(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, 3, tbl.Width())
	assert.Equal(t, []string{"state", "saidi", "extra"}, tbl.Names())
	assert.Equal(t, []any{"ME", "", ""}, tbl.Row(2))
}

func TestFromRowsTooWide(t *testing.T) {
	_, err := FromRows([]string{"a"}, [][]string{{"1", "2"}})
	assert.Error(t, err)
}

func TestCoerce(t *testing.T) {
	tbl := sample(t)
	require.NoError(t, tbl.Coerce("saidi"))

	col, ok := tbl.Column("saidi")
	require.True(t, ok)
	assert.Equal(t, Float, col.Type)
	assert.Equal(t, []sql.NullFloat64{
		{Float64: 1234, Valid: true},
		{},
		{},
	}, col.Floats())
	assert.Equal(t, []any{"NY", 1234.0, "x"}, tbl.Row(0))
	assert.Equal(t, []any{"VT", nil, "y"}, tbl.Row(1))

	// Coercing again is a no-op
	require.NoError(t, tbl.Coerce("saidi"))
}

func TestCoerceFailure(t *testing.T) {
	tbl, err := FromRows([]string{"saifi"}, [][]string{{"1.5"}, {"n/a"}})
	require.NoError(t, err)

	err = tbl.Coerce("saifi")
	require.Error(t, err)

	var ce *CoerceError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "saifi", ce.Column)
	assert.Equal(t, 1, ce.Row)
	assert.Equal(t, "n/a", ce.Text)
}

func TestCoerceUnknownColumn(t *testing.T) {
	assert.ErrorIs(t, sample(t).Coerce("caidi"), ErrColumnNotFound)
}

func TestSelect(t *testing.T) {
	tbl := sample(t)

	out, err := tbl.Select("saidi", "state")
	require.NoError(t, err)
	assert.Equal(t, []string{"saidi", "state"}, out.Names())
	assert.Equal(t, 3, out.Len())

	// Coercing the projection leaves the source untouched
	require.NoError(t, out.Coerce("saidi"))
	src, _ := tbl.Column("saidi")
	assert.Equal(t, String, src.Type)
}

func TestSelectMissing(t *testing.T) {
	_, err := sample(t).Select("state", "caidi", "saifi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrColumnNotFound))
	assert.Contains(t, err.Error(), "caidi, saifi")
}

func TestSelectDuplicateHeaderUsesFirst(t *testing.T) {
	tbl, err := FromRows([]string{"ba_code", "count", "ba_code"}, [][]string{{"first", "1", "second"}})
	require.NoError(t, err)

	out, err := tbl.Select("ba_code")
	require.NoError(t, err)
	assert.Equal(t, []any{"first"}, out.Row(0))
}

func TestConcat(t *testing.T) {
	a := sample(t)
	b := sample(t)
	require.NoError(t, a.Coerce("saidi"))
	require.NoError(t, b.Coerce("saidi"))

	out, err := Concat(a, b)
	require.NoError(t, err)
	assert.Equal(t, a.Len()+b.Len(), out.Len())
	assert.Equal(t, a.Names(), out.Names())
	assert.Equal(t, a.Types(), out.Types())
	assert.Equal(t, []any{"NY", 1234.0, "x"}, out.Row(3))
}

func TestConcatSchemaDrift(t *testing.T) {
	a := sample(t)
	b := sample(t)
	require.NoError(t, a.Coerce("saidi"))

	_, err := Concat(a, b)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	c, err := a.Select("state", "saidi")
	require.NoError(t, err)
	_, err = Concat(a, c)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestConcatNothing(t *testing.T) {
	_, err := Concat()
	assert.Error(t, err)
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New(
		NewStringColumn("a", []string{"1", "2"}),
		NewFloatColumn("b", []sql.NullFloat64{{Float64: 1, Valid: true}}),
	)
	assert.Error(t, err)
}

func TestDataFrame(t *testing.T) {
	tbl := sample(t)
	require.NoError(t, tbl.Coerce("saidi"))

	df := tbl.DataFrame()
	require.NoError(t, df.Err)
	assert.Equal(t, 3, df.Nrow())
	assert.Equal(t, 3, df.Ncol())
	assert.Equal(t, []string{"state", "saidi", "extra"}, df.Names())

	desc := tbl.Describe()
	require.NoError(t, desc.Err)
	assert.Equal(t, []string{"column", "saidi"}, desc.Names())
}

func TestDescribeSkipsMissingValues(t *testing.T) {
	tbl, err := FromRows(
		[]string{"state", "saidi", "saifi"},
		[][]string{
			{"NY", "10", "."},
			{"VT", ".", ""},
			{"ME", "20", "."},
		},
	)
	require.NoError(t, err)
	require.NoError(t, tbl.Coerce("saidi", "saifi"))

	desc := tbl.Describe()
	require.NoError(t, desc.Err)
	require.Equal(t, 9, desc.Nrow())

	stat := func(column, label string) float64 {
		t.Helper()
		labels := desc.Col("column").Records()
		for i, l := range labels {
			if l == label {
				return desc.Col(column).Elem(i).Float()
			}
		}
		t.Fatalf("no %q row in %v", label, labels)
		return 0
	}

	assert.Equal(t, 2.0, stat("saidi", "count"))
	assert.Equal(t, 15.0, stat("saidi", "mean"))
	assert.Equal(t, 15.0, stat("saidi", "median"))
	assert.InDelta(t, 7.0710678, stat("saidi", "std"), 1e-6)
	assert.Equal(t, 10.0, stat("saidi", "min"))
	assert.Equal(t, 20.0, stat("saidi", "max"))

	assert.Equal(t, 0.0, stat("saifi", "count"))
	assert.True(t, math.IsNaN(stat("saifi", "mean")))
}
