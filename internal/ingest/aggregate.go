package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jgoulah/gridsales/internal/table"
	"github.com/jgoulah/gridsales/pkg/models"
)

// LoadAllSales stacks every configured sales year into one table
func (p *Pipeline) LoadAllSales(ctx context.Context) (*table.Table, error) {
	return p.LoadAll(ctx, models.Sales)
}

// LoadAllReliability stacks every configured reliability year into one table
func (p *Pipeline) LoadAllReliability(ctx context.Context) (*table.Table, error) {
	return p.LoadAll(ctx, models.Reliability)
}

// LoadAll runs the single-year pipeline for each year in the dataset's range,
// in order, and concatenates the results. The first failing year aborts the
// whole aggregation.
func (p *Pipeline) LoadAll(ctx context.Context, ds models.Dataset) (*table.Table, error) {
	years := p.cfg.Dataset(ds).Years()
	start := time.Now()

	tables := make([]*table.Table, 0, len(years))
	for _, year := range years {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s %d: %w", ds, year, err)
		}

		t, err := p.Load(ctx, ds, year)
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", ds, year, err)
		}
		p.logger.Debug("Normalized year",
			slog.String("dataset", string(ds)),
			slog.Int("year", year),
			slog.Int("rows", t.Len()))
		tables = append(tables, t)
	}

	all, err := table.Concat(tables...)
	if err != nil {
		return nil, fmt.Errorf("concatenating %s: %w", ds, err)
	}

	p.logger.Info("Aggregated dataset",
		slog.String("dataset", string(ds)),
		slog.Int("years", len(years)),
		slog.Int("rows", all.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return all, nil
}
