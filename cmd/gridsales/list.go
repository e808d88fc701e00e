package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsales/pkg/models"
)

var listCmd = &cobra.Command{
	Use:   "list [dataset]",
	Short: "List recorded builds",
	Long:  `Displays the build history stored in the database, newest first.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var filter models.Dataset
	if len(args) == 1 {
		filter, err = models.ParseDataset(args[0])
		if err != nil {
			return err
		}
	}

	// Open database
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(filter)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No builds recorded")
		return nil
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%-8s  %-12s  %-9s  %10s  %s\n", "Run", "Dataset", "Years", "Rows", "When")
	fmt.Println("----------------------------------------------------------------------")

	for _, run := range runs {
		fmt.Printf("%-8s  %-12s  %d-%d  %10s  %s\n",
			shortID(run.RunID),
			run.Dataset,
			run.FirstYear, run.LastYear,
			humanize.Comma(int64(run.Rows)),
			humanize.Time(run.CreatedAt))
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("Total: %d builds\n", len(runs))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
