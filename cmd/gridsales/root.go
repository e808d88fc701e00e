package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jgoulah/gridsales/internal/config"
	"github.com/jgoulah/gridsales/internal/database"
	"github.com/jgoulah/gridsales/internal/logging"
	"github.com/jgoulah/gridsales/pkg/models"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	dbPath  string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "gridsales",
	Short: "Combine EIA-861 utility spreadsheets into canonical tables",
	Long: `GridSales reads the annual EIA-861 "Sales to Ultimate Customers" and
"Reliability" spreadsheets from year-stamped folders, normalizes their drifting
headers into one schema per dataset, and writes a combined spreadsheet per
dataset. Results can also be stored in a local SQLite database and announced
over MQTT.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./gridsales.db)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with GRIDSALES_* overrides")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path, preferring the --db flag
func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	return cfg.GetDatabasePath()
}

// loadConfig loads the configuration file
func loadConfig() (*config.Config, error) {
	return config.Load(getConfigPath())
}

// newLogger builds the structured logger for a command
func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging, os.Stderr)
}

// openDB opens the database connection
func openDB(cfg *config.Config) (*database.DB, error) {
	path := getDBPath(cfg)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}

// datasetsFromArgs returns the dataset named in args, or every dataset
func datasetsFromArgs(args []string) ([]models.Dataset, error) {
	if len(args) == 0 || args[0] == "all" {
		return models.Datasets, nil
	}
	ds, err := models.ParseDataset(args[0])
	if err != nil {
		return nil, err
	}
	return []models.Dataset{ds}, nil
}
