package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsales/internal/ingest"
)

var yearsCmd = &cobra.Command{
	Use:   "years [dataset]",
	Short: "List the years found in the raw data folder",
	Long: `Scans raw_dir for year-stamped folders and lists, per dataset, each
folder with its year and which configured years are missing.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runYears,
}

func init() {
	rootCmd.AddCommand(yearsCmd)
}

func runYears(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	datasets, err := datasetsFromArgs(args)
	if err != nil {
		return err
	}

	pipeline := ingest.New(cfg, newLogger(cfg))
	for _, ds := range datasets {
		found, err := pipeline.Available(ds)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", cfg.GetRawDir(), err)
		}
		folders, err := pipeline.Folders(ds)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", cfg.GetRawDir(), err)
		}

		have := make(map[int]bool, len(found))
		for _, y := range found {
			have[y] = true
		}

		dc := cfg.Dataset(ds)
		var missing []int
		for _, y := range dc.Years() {
			if !have[y] {
				missing = append(missing, y)
			}
		}

		fmt.Printf("\n%s (configured %d-%d):\n", ds, dc.FirstYear, dc.LastYear)
		fmt.Println("----------------------------------------")
		for _, f := range folders {
			fmt.Printf("  %d  %s\n", f.Year, f.Name)
		}
		fmt.Printf("Found:   %v\n", found)
		if len(missing) > 0 {
			fmt.Printf("Missing: %v\n", missing)
		} else {
			fmt.Println("✓ All configured years present")
		}
	}

	return nil
}
