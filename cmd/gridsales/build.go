package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsales/internal/database"
	"github.com/jgoulah/gridsales/internal/ingest"
	"github.com/jgoulah/gridsales/internal/output"
	"github.com/jgoulah/gridsales/internal/publisher"
	"github.com/jgoulah/gridsales/pkg/models"
)

var (
	buildDataset   string
	buildNoDB      bool
	buildNoPublish bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the combined dataset spreadsheets",
	Long: `Runs every configured year of each dataset through the normalization
pipeline and writes <output_dir>/all_<dataset>.xlsx. Any year that fails aborts
the build of that dataset.

When enabled in config, the combined tables are also stored in SQLite and a
retained build summary is published over MQTT.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVar(&buildDataset, "dataset", "all", "Dataset to build (sales, reliability or all)")
	buildCmd.Flags().BoolVar(&buildNoDB, "no-db", false, "Skip storing results in the database")
	buildCmd.Flags().BoolVar(&buildNoPublish, "no-publish", false, "Skip the MQTT build notification")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	start := time.Now()
	fmt.Printf("=== Build started at %s ===\n", start.Format("2006-01-02 15:04:05 MST"))

	// Load config
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	datasets, err := datasetsFromArgs([]string{buildDataset})
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger := newLogger(cfg).With(slog.String("run_id", runID))
	pipeline := ingest.New(cfg, logger)

	var db *database.DB
	if cfg.Database.Enabled && !buildNoDB {
		db, err = openDB(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
	}

	var pub *publisher.Publisher
	if cfg.MQTT.Enabled && !buildNoPublish {
		pub, err = publisher.New(cfg.MQTT, "gridsales-"+runID[:8])
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		defer pub.Close()
	}

	for _, ds := range datasets {
		dc := cfg.Dataset(ds)
		fmt.Printf("\nBuilding %s (%d-%d) from %s...\n", ds, dc.FirstYear, dc.LastYear, cfg.GetRawDir())

		tbl, err := pipeline.LoadAll(cmd.Context(), ds)
		if err != nil {
			return fmt.Errorf("building %s: %w", ds, err)
		}

		path := filepath.Join(cfg.GetOutputDir(), output.FileName(string(ds)))
		if err := output.WriteXLSX(path, string(ds), tbl); err != nil {
			return fmt.Errorf("writing %s: %w", ds, err)
		}

		size := "?"
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}
		fmt.Printf("✓ Wrote %s rows x %d columns to %s (%s)\n",
			humanize.Comma(int64(tbl.Len())), tbl.Width(), path, size)

		run := &models.IngestRun{
			RunID:     runID,
			Dataset:   ds,
			FirstYear: dc.FirstYear,
			LastYear:  dc.LastYear,
			Rows:      tbl.Len(),
			Output:    path,
			CreatedAt: time.Now().UTC(),
		}

		if db != nil {
			if err := db.ReplaceDataset(ds, tbl); err != nil {
				return fmt.Errorf("storing %s: %w", ds, err)
			}
			if err := db.InsertRun(run); err != nil {
				return fmt.Errorf("recording run: %w", err)
			}
			fmt.Printf("✓ Stored %s in %s\n", ds, getDBPath(cfg))
		}

		if pub != nil {
			summary := publisher.Summary{
				RunID:      run.RunID,
				Dataset:    run.Dataset,
				FirstYear:  run.FirstYear,
				LastYear:   run.LastYear,
				Rows:       run.Rows,
				Output:     run.Output,
				FinishedAt: run.CreatedAt,
			}
			if err := pub.Publish(summary); err != nil {
				// The spreadsheet is already written, a missed notification is not fatal
				logger.Warn("Failed to publish build summary",
					slog.String("dataset", string(ds)),
					slog.Any("error", err))
			} else {
				fmt.Printf("✓ Published to %s\n", publisher.Topic(cfg.GetTopicPrefix(), ds))
			}
		}
	}

	fmt.Printf("\n=== Build finished in %s (run %s) ===\n", time.Since(start).Round(time.Millisecond), runID)
	return nil
}
