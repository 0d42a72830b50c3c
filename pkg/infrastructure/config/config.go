package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up in the working directory
const DefaultPath = "stocklink.yaml"

// Config holds all stocklink configuration.
type Config struct {
	Sources  SourcesConfig  `yaml:"sources"`
	Output   OutputConfig   `yaml:"output"`
	Allocate AllocateConfig `yaml:"allocate"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
}

// SourcesConfig names the input files.
type SourcesConfig struct {
	Issues   string `yaml:"issues"`
	Receipts string `yaml:"receipts"`
	DayFirst bool   `yaml:"day_first"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Links     string `yaml:"links"`
	Remaining string `yaml:"remaining"` // optional leftover-balance CSV
	Database  string `yaml:"database"`  // optional SQLite run store
	Format    string `yaml:"format"`    // text, json, csv
	Preview   int    `yaml:"preview"`
}

// AllocateConfig tunes the allocator.
type AllocateConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Sources: SourcesConfig{
			Issues:   "stock_issues.csv",
			Receipts: "stock_receipts.csv",
		},
		Output: OutputConfig{
			Links:   "issue_receipt_links.csv",
			Format:  "text",
			Preview: 5,
		},
		Allocate: AllocateConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if path := os.Getenv("STOCKLINK_ISSUES"); path != "" {
		c.Sources.Issues = path
	}
	if path := os.Getenv("STOCKLINK_RECEIPTS"); path != "" {
		c.Sources.Receipts = path
	}
	if path := os.Getenv("STOCKLINK_OUTPUT"); path != "" {
		c.Output.Links = path
	}
	if path := os.Getenv("STOCKLINK_DB"); path != "" {
		c.Output.Database = path
	}
	if level := os.Getenv("STOCKLINK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("STOCKLINK_DAY_FIRST"); v != "" {
		dayFirst, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid STOCKLINK_DAY_FIRST %q: %w", v, err)
		}
		c.Sources.DayFirst = dayFirst
	}
	return nil
}

// ValidFormats lists the supported report formats.
var ValidFormats = []string{"text", "json", "csv"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sources.Issues == "" || c.Sources.Receipts == "" {
		return fmt.Errorf("both issue and receipt sources must be set")
	}
	if c.Output.Links == "" {
		return fmt.Errorf("output link file must be set")
	}
	if c.Allocate.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Allocate.Workers)
	}
	if c.Output.Preview < 0 {
		return fmt.Errorf("preview must not be negative, got %d", c.Output.Preview)
	}

	validFormat := false
	for _, f := range ValidFormats {
		if c.Output.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, ValidFormats)
	}

	return nil
}
