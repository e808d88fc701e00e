package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/gridsales/pkg/models"
)

// EnvPrefix prefixes every environment override, e.g. GRIDSALES_RAW_DIR
const EnvPrefix = "GRIDSALES"

// Config holds the application configuration
type Config struct {
	RawDir      string         `yaml:"raw_dir,omitempty" split_words:"true"`    // Root holding year-stamped folders
	OutputDir   string         `yaml:"output_dir,omitempty" split_words:"true"` // Where combined spreadsheets are written
	Sales       DatasetConfig  `yaml:"sales,omitempty" split_words:"true"`
	Reliability DatasetConfig  `yaml:"reliability,omitempty" split_words:"true"`
	Database    DatabaseConfig `yaml:"database,omitempty" split_words:"true"`
	MQTT        MQTTConfig     `yaml:"mqtt,omitempty" split_words:"true"`
	Logging     LoggingConfig  `yaml:"logging,omitempty" split_words:"true"`
}

// DatasetConfig describes where and how one dataset is read.
// Zero values fall back to the dataset defaults.
type DatasetConfig struct {
	FirstYear    int      `yaml:"first_year,omitempty" split_words:"true"`
	LastYear     int      `yaml:"last_year,omitempty" split_words:"true"`
	Stem         string   `yaml:"stem,omitempty" split_words:"true"`          // File name before "_<year>.<ext>"
	Extensions   []string `yaml:"extensions,omitempty" split_words:"true"`    // Tried in order
	HeaderCutoff int      `yaml:"header_cutoff,omitempty" split_words:"true"` // Reliability only
}

// DatabaseConfig holds the optional SQLite sink
type DatabaseConfig struct {
	Enabled bool   `yaml:"enabled" split_words:"true"`
	Path    string `yaml:"path,omitempty" split_words:"true"`
}

// MQTTConfig holds the optional build notification broker
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled" split_words:"true"`
	Broker      string `yaml:"broker,omitempty" split_words:"true"` // host:port
	Username    string `yaml:"username,omitempty" split_words:"true"`
	Password    string `yaml:"password,omitempty" split_words:"true"`
	TopicPrefix string `yaml:"topic_prefix,omitempty" split_words:"true"`
}

// LoggingConfig controls the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" split_words:"true"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty" split_words:"true"` // json, text or auto
}

// Load reads the config file and applies environment overrides
func Load(configPath string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case os.IsNotExist(err):
		// Missing file means defaults
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("reading environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// Validate checks the settings that cannot be defaulted away
func (c *Config) Validate() error {
	for _, ds := range models.Datasets {
		d := c.Dataset(ds)
		if d.FirstYear > d.LastYear {
			return fmt.Errorf("%s: first_year %d is after last_year %d", ds, d.FirstYear, d.LastYear)
		}
		if len(d.Extensions) == 0 {
			return fmt.Errorf("%s: at least one file extension is required", ds)
		}
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("MQTT broker address is required when enabled")
	}
	return nil
}

// GetRawDir returns the raw data root, defaulting to ./raw
func (c *Config) GetRawDir() string {
	if c.RawDir == "" {
		return "raw"
	}
	return c.RawDir
}

// GetOutputDir returns the output directory, defaulting to ./data
func (c *Config) GetOutputDir() string {
	if c.OutputDir == "" {
		return "data"
	}
	return c.OutputDir
}

// GetDatabasePath returns the SQLite file path, defaulting to ./gridsales.db
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "gridsales.db"
	}
	return c.Database.Path
}

// GetTopicPrefix returns the MQTT topic prefix, defaulting to "gridsales"
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "gridsales"
	}
	return c.MQTT.TopicPrefix
}

// Dataset returns the dataset settings with defaults filled in
func (c *Config) Dataset(ds models.Dataset) DatasetConfig {
	var (
		set  DatasetConfig
		base DatasetConfig
	)
	switch ds {
	case models.Sales:
		set = c.Sales
		base = DatasetConfig{FirstYear: 2010, LastYear: 2024, Stem: "Sales_Ult_Cust", Extensions: []string{".xlsx", ".xls"}}
	case models.Reliability:
		set = c.Reliability
		base = DatasetConfig{FirstYear: 2013, LastYear: 2024, Stem: "Reliability", Extensions: []string{".xlsx"}, HeaderCutoff: 2021}
	default:
		return set
	}

	if set.FirstYear > 0 {
		base.FirstYear = set.FirstYear
	}
	if set.LastYear > 0 {
		base.LastYear = set.LastYear
	}
	if set.Stem != "" {
		base.Stem = set.Stem
	}
	if len(set.Extensions) > 0 {
		base.Extensions = set.Extensions
	}
	if set.HeaderCutoff > 0 {
		base.HeaderCutoff = set.HeaderCutoff
	}
	return base
}

// Years returns every year in the inclusive range, ascending
func (d DatasetConfig) Years() []int {
	if d.LastYear < d.FirstYear {
		return nil
	}
	years := make([]int, 0, d.LastYear-d.FirstYear+1)
	for y := d.FirstYear; y <= d.LastYear; y++ {
		years = append(years, y)
	}
	return years
}

// Contains reports whether year is inside the configured range
func (d DatasetConfig) Contains(year int) bool {
	return year >= d.FirstYear && year <= d.LastYear
}

// FileStem returns the spreadsheet name of year without its extension,
// e.g. Sales_Ult_Cust_2016
func (d DatasetConfig) FileStem(year int) string {
	return fmt.Sprintf("%s_%d", d.Stem, year)
}
