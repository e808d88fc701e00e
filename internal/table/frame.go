package table

import (
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DataFrame converts the table to a gota DataFrame. Missing numeric values
// become NaN.
func (t *Table) DataFrame() dataframe.DataFrame {
	ss := make([]series.Series, 0, len(t.cols))
	for _, c := range t.cols {
		switch c.Type {
		case Float:
			vals := make([]float64, len(c.nums))
			for i, n := range c.nums {
				if n.Valid {
					vals[i] = n.Float64
				} else {
					vals[i] = math.NaN()
				}
			}
			ss = append(ss, series.New(vals, series.Float, c.Name))
		default:
			ss = append(ss, series.New(c.strs, series.String, c.Name))
		}
	}
	return dataframe.New(ss...)
}

// describeStats labels the rows of Describe
var describeStats = []string{"count", "mean", "median", "std", "min", "25%", "50%", "75%", "max"}

// Describe returns summary statistics for the Float columns. Each column is
// summarised over its non-missing values only; count is how many there are.
func (t *Table) Describe() dataframe.DataFrame {
	ss := []series.Series{series.New(describeStats, series.String, "column")}
	for _, c := range t.cols {
		if c.Type != Float {
			continue
		}
		ss = append(ss, series.New(summarise(c), series.Float, c.Name))
	}
	return dataframe.New(ss...)
}

func summarise(c *Column) []float64 {
	valid := make([]float64, 0, len(c.nums))
	for _, n := range c.nums {
		if n.Valid {
			valid = append(valid, n.Float64)
		}
	}

	out := make([]float64, len(describeStats))
	out[0] = float64(len(valid))
	if len(valid) == 0 {
		for i := 1; i < len(out); i++ {
			out[i] = math.NaN()
		}
		return out
	}

	s := series.New(valid, series.Float, c.Name)
	copy(out[1:], []float64{
		s.Mean(),
		s.Median(),
		s.StdDev(),
		s.Min(),
		s.Quantile(0.25),
		s.Quantile(0.50),
		s.Quantile(0.75),
		s.Max(),
	})
	return out
}
