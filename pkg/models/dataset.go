package models

import (
	"fmt"
	"strings"
)

// Dataset identifies one of the annual spreadsheet families
type Dataset string

const (
	Sales       Dataset = "sales"
	Reliability Dataset = "reliability"
)

// Datasets lists every supported dataset in build order
var Datasets = []Dataset{Sales, Reliability}

// ParseDataset converts a user supplied name into a Dataset
func ParseDataset(name string) (Dataset, error) {
	switch Dataset(strings.ToLower(strings.TrimSpace(name))) {
	case Sales:
		return Sales, nil
	case Reliability:
		return Reliability, nil
	default:
		return "", fmt.Errorf("unknown dataset: %s (available: sales, reliability)", name)
	}
}

// Columns returns the canonical output columns for the dataset, in order
func (d Dataset) Columns() []string {
	switch d {
	case Sales:
		return append([]string(nil), SalesColumns...)
	case Reliability:
		return append([]string(nil), ReliabilityColumns...)
	default:
		return nil
	}
}

// NumericColumns returns the columns that are coerced to floating point
func (d Dataset) NumericColumns() []string {
	switch d {
	case Sales:
		return append([]string(nil), SalesColumns[len(salesIdentity):]...)
	case Reliability:
		return append([]string(nil), ReliabilityColumns[len(reliabilityIdentity):]...)
	default:
		return nil
	}
}

// Category is a customer class. Sales spreadsheets repeat a
// dollars/energy/count column triple once per category, in this order.
type Category int

const (
	Residential Category = iota
	Commercial
	Industrial
	Transportation
	Total
)

// Categories lists the customer categories in spreadsheet order
var Categories = []Category{Residential, Commercial, Industrial, Transportation, Total}

var categoryNames = [...]string{"RESIDENTIAL", "COMMERCIAL", "INDUSTRIAL", "TRANSPORTATION", "TOTAL"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Suffix is the lowercase form used in canonical column names
func (c Category) Suffix() string {
	return strings.ToLower(c.String())
}

// Measure column prefixes repeated for every category
const (
	ThousandDollars = "thousand_dollars"
	Megawatthours   = "megawatthours"
	Customers       = "customers"
)

var salesIdentity = []string{
	"data_year",
	"utility_number",
	"utility_name",
	"part",
	"service_type",
	"data_type",
	"state",
	"ownership",
}

var reliabilityIdentity = []string{
	"data_year",
	"utility_number",
	"utility_name",
	"state",
	"ownership",
}

// SalesColumns is the canonical sales schema: identity columns followed by
// a thousand_dollars/megawatthours/customers triple per category.
var SalesColumns = func() []string {
	cols := append([]string(nil), salesIdentity...)
	for _, c := range Categories {
		cols = append(cols,
			ThousandDollars+"_"+c.Suffix(),
			Megawatthours+"_"+c.Suffix(),
			Customers+"_"+c.Suffix(),
		)
	}
	return cols
}()

// ReliabilityColumns is the canonical reliability schema
var ReliabilityColumns = append(append([]string(nil), reliabilityIdentity...), "saidi", "saifi", "caidi")
