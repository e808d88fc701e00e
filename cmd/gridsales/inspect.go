package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/gridsales/internal/ingest"
	"github.com/jgoulah/gridsales/pkg/models"
)

var inspectRows int

var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset> <year>",
	Short: "Run one year through the pipeline and show the result",
	Long: `Loads a single year of a dataset, normalizes it, and prints the canonical
columns with their types, the row count and the first few rows. Nothing is
written to disk.`,
	Args: cobra.ExactArgs(2),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 5, "Number of rows to preview")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ds, err := models.ParseDataset(args[0])
	if err != nil {
		return err
	}
	year, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", args[1], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tbl, err := ingest.New(cfg, newLogger(cfg)).Load(cmd.Context(), ds, year)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s %d: %s rows\n", ds, year, humanize.Comma(int64(tbl.Len())))
	fmt.Println("----------------------------------------")
	types := tbl.Types()
	for i, name := range tbl.Names() {
		fmt.Printf("%-32s %s\n", name, types[i])
	}

	n := inspectRows
	if n > tbl.Len() {
		n = tbl.Len()
	}
	if n <= 0 {
		return nil
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(tbl.Names(), "\t"))
	for i := 0; i < n; i++ {
		row := tbl.Row(i)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
