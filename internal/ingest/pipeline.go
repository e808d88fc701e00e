// Package ingest runs the per-year spreadsheet pipelines and stacks the
// years of a dataset into one canonical table.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jgoulah/gridsales/internal/config"
	"github.com/jgoulah/gridsales/internal/locator"
	"github.com/jgoulah/gridsales/internal/normalize"
	"github.com/jgoulah/gridsales/internal/sheet"
	"github.com/jgoulah/gridsales/internal/table"
	"github.com/jgoulah/gridsales/pkg/models"
)

// ErrYearOutOfRange is returned for a year outside the dataset's configured range
var ErrYearOutOfRange = errors.New("year not available")

// Pipeline loads canonical tables from the raw data root
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a pipeline for cfg. A nil logger falls back to slog.Default().
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// FolderMatch returns which year token of a folder name identifies ds.
// Sales folders carry their data year last, reliability folders first.
func FolderMatch(ds models.Dataset) locator.Match {
	if ds == models.Reliability {
		return locator.MatchFirst
	}
	return locator.MatchLast
}

// locate scans the raw data root for the folders of ds. Reliability folders
// outside the configured range are ignored.
func (p *Pipeline) locate(ds models.Dataset) (*locator.Locator, error) {
	loc, err := locator.New(p.cfg.GetRawDir(), FolderMatch(ds))
	if err != nil {
		return nil, err
	}
	if ds == models.Reliability {
		dc := p.cfg.Dataset(ds)
		loc = loc.Within(dc.FirstYear, dc.LastYear)
	}
	return loc, nil
}

// Available lists the years of ds discovered under the raw data root
func (p *Pipeline) Available(ds models.Dataset) ([]int, error) {
	loc, err := p.locate(ds)
	if err != nil {
		return nil, err
	}
	return loc.Years(), nil
}

// Folders lists the year-stamped folders of ds, sorted by name
func (p *Pipeline) Folders(ds models.Dataset) ([]locator.Folder, error) {
	loc, err := p.locate(ds)
	if err != nil {
		return nil, err
	}
	return loc.Folders(), nil
}

// Load runs the single-year pipeline of ds
func (p *Pipeline) Load(ctx context.Context, ds models.Dataset, year int) (*table.Table, error) {
	switch ds {
	case models.Sales:
		return p.LoadSales(ctx, year)
	case models.Reliability:
		return p.LoadReliability(ctx, year)
	default:
		return nil, fmt.Errorf("unknown dataset: %s", ds)
	}
}

// LoadSales reads one year of sales to ultimate customers
func (p *Pipeline) LoadSales(ctx context.Context, year int) (*table.Table, error) {
	dc := p.cfg.Dataset(models.Sales)

	grid, err := p.open(ctx, models.Sales, dc, year)
	if err != nil {
		return nil, err
	}
	if len(grid.Rows) <= normalize.SalesHeaderRow {
		return nil, fmt.Errorf("%s: missing header row %d", grid.Path, normalize.SalesHeaderRow)
	}

	names, err := normalize.SalesHeaders(grid.Rows[normalize.SalesHeaderRow])
	if err != nil {
		return nil, fmt.Errorf("%s: normalizing headers: %w", grid.Path, err)
	}

	rows := normalize.Trim(grid.Rows, normalize.SalesLeadRows, normalize.SalesTrailRows)
	return p.finish(models.Sales, grid, names, rows)
}

// LoadReliability reads one year of distribution reliability indices
func (p *Pipeline) LoadReliability(ctx context.Context, year int) (*table.Table, error) {
	dc := p.cfg.Dataset(models.Reliability)
	if !dc.Contains(year) {
		return nil, fmt.Errorf("%w: %d, possible years are %v", ErrYearOutOfRange, year, dc.Years())
	}

	grid, err := p.open(ctx, models.Reliability, dc, year)
	if err != nil {
		return nil, err
	}

	layout, err := normalize.NewReliabilityLayout(grid.Rows, year, dc.HeaderCutoff)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", grid.Path, err)
	}
	p.logger.Debug("Reliability layout",
		slog.Int("year", year),
		slog.Int("header_row", layout.HeaderRow),
		slog.Bool("short_form", layout.ShortForm))

	rows := normalize.Trim(grid.Rows, layout.LeadRows(), normalize.ReliabilityTrailRows)
	return p.finish(models.Reliability, grid, models.ReliabilityColumns, layout.Project(rows))
}

// open locates the year's folder and reads its spreadsheet
func (p *Pipeline) open(ctx context.Context, ds models.Dataset, dc config.DatasetConfig, year int) (*sheet.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc, err := p.locate(ds)
	if err != nil {
		return nil, err
	}
	folder, err := loc.Find(year)
	if err != nil {
		return nil, err
	}

	grid, err := sheet.Open(folder.Path, dc.FileStem(year), dc.Extensions...)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("Loaded spreadsheet",
		slog.Int("year", year),
		slog.String("path", grid.Path),
		slog.String("sheet", grid.Sheet),
		slog.Int("rows", len(grid.Rows)))
	return grid, nil
}

// finish names the trimmed rows, coerces the numeric columns and projects
// onto the canonical schema
func (p *Pipeline) finish(ds models.Dataset, grid *sheet.Grid, names []string, rows [][]string) (*table.Table, error) {
	raw, err := table.FromRows(names, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", grid.Path, err)
	}

	if err := raw.Coerce(ds.NumericColumns()...); err != nil {
		return nil, fmt.Errorf("%s: %w", grid.Path, err)
	}

	out, err := raw.Select(ds.Columns()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", grid.Path, err)
	}
	return out, nil
}
