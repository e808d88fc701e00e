package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsales/internal/ingest"
	"github.com/jgoulah/gridsales/internal/table"
	"github.com/jgoulah/gridsales/pkg/models"
)

var describeRaw bool

var describeCmd = &cobra.Command{
	Use:   "describe <dataset>",
	Short: "Show summary statistics of a combined dataset",
	Long: `Prints count, mean, median, standard deviation, min, quartiles and max for each
numeric column of the stored dataset. With --raw the dataset is aggregated
from raw_dir instead of read from the database.`,
	Args: cobra.ExactArgs(1),
	RunE: runDescribe,
}

func init() {
	describeCmd.Flags().BoolVar(&describeRaw, "raw", false, "Aggregate from the raw data folder instead of the database")
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ds, err := models.ParseDataset(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var tbl *table.Table
	if describeRaw {
		tbl, err = ingest.New(cfg, newLogger(cfg)).LoadAll(cmd.Context(), ds)
		if err != nil {
			return err
		}
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		tbl, err = db.LoadDataset(ds)
		if err != nil {
			return err
		}
	}

	summary := tbl.Describe()
	if summary.Err != nil {
		return fmt.Errorf("describing %s: %w", ds, summary.Err)
	}

	fmt.Printf("\n%s: %d rows\n\n", ds, tbl.Len())
	fmt.Println(summary)
	return nil
}
