// Package normalize turns the raw header rows of the annual spreadsheets
// into canonical column names and trims the non-data rows around them.
package normalize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jgoulah/gridsales/pkg/models"
)

// ErrCategoryOverflow is returned when a measure column appears after every
// customer category has been consumed
var ErrCategoryOverflow = errors.New("more measure columns than customer categories")

// SalesHeaderRow is the grid row holding the sales column labels
const SalesHeaderRow = 1

// Sales row trimming: the category banner and label rows lead, a footer trails
const (
	SalesLeadRows  = 2
	SalesTrailRows = 1
)

// rewrites fixes known header corruption after cleaning
var rewrites = map[string]string{
	"data_type_x000d_":  "data_type",
	"thousands_dollars": models.ThousandDollars,
}

// CleanHeader keeps the first line of a header cell, replaces spaces with
// underscores, lowercases and trims it.
func CleanHeader(raw string) string {
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		raw = raw[:i]
	}
	name := strings.TrimSpace(strings.ToLower(strings.ReplaceAll(raw, " ", "_")))
	if fixed, ok := rewrites[name]; ok {
		return fixed
	}
	return name
}

// categoryCursor walks the customer categories left to right. It only
// advances when a count column closes the current category block.
type categoryCursor struct {
	pos int
}

func (c *categoryCursor) current() (models.Category, bool) {
	if c.pos >= len(models.Categories) {
		return 0, false
	}
	return models.Categories[c.pos], true
}

func (c *categoryCursor) advance() {
	c.pos++
}

// SalesHeaders maps a raw sales header row onto canonical names. Dollar and
// energy columns take the current category as suffix; a count column becomes
// customers_<category> and moves on to the next category.
func SalesHeaders(raw []string) ([]string, error) {
	var cursor categoryCursor

	names := make([]string, len(raw))
	for i, cell := range raw {
		name := CleanHeader(cell)

		switch name {
		case models.ThousandDollars, models.Megawatthours:
			cat, ok := cursor.current()
			if !ok {
				return nil, fmt.Errorf("%w: column %d %q", ErrCategoryOverflow, i, cell)
			}
			name = name + "_" + cat.Suffix()
		case "count":
			cat, ok := cursor.current()
			if !ok {
				return nil, fmt.Errorf("%w: column %d %q", ErrCategoryOverflow, i, cell)
			}
			name = models.Customers + "_" + cat.Suffix()
			cursor.advance()
		}

		names[i] = name
	}
	return names, nil
}
