package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure. None of these settings change how a table
// is cleaned or analyzed; they steer ingestion, charts and output.
type Global struct {
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`

	// Ingestion
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter" validate:"omitempty,oneof=auto comma semicolon tab pipe"`
	DetectDates bool   `mapstructure:"detect_dates" yaml:"detect_dates"`
	SheetName   string `mapstructure:"sheet_name" yaml:"sheet_name"`
	MaxRows     int    `mapstructure:"max_rows" yaml:"max_rows" validate:"min=0"`

	// Charts
	MaxCategoricalCharts int    `mapstructure:"max_categorical_charts" yaml:"max_categorical_charts" validate:"min=0"`
	MaxPairplotColumns   int    `mapstructure:"max_pairplot_columns" yaml:"max_pairplot_columns" validate:"min=2"`
	HistogramBins        int    `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"min=1,max=200"`
	ChartFont            string `mapstructure:"chart_font" yaml:"chart_font"`

	// Run history
	HistoryDB      string `mapstructure:"history_db" yaml:"history_db"`
	HistoryEnabled bool   `mapstructure:"history_enabled" yaml:"history_enabled"`

	LogLevel      string   `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	ReportFormats []string `mapstructure:"report_formats" yaml:"report_formats" validate:"min=1,dive,oneof=html md json yaml"`
}

// Keys lists every settable key in display order.
var Keys = []string{
	"output_dir", "delimiter", "detect_dates", "sheet_name", "max_rows",
	"max_categorical_charts", "max_pairplot_columns", "histogram_bins", "chart_font",
	"history_db", "history_enabled", "log_level", "report_formats",
}

var validate = validator.New()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Get returns the display form of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "output_dir":
		return c.OutputDir, nil
	case "delimiter":
		return c.Delimiter, nil
	case "detect_dates":
		return strconv.FormatBool(c.DetectDates), nil
	case "sheet_name":
		return c.SheetName, nil
	case "max_rows":
		return strconv.Itoa(c.MaxRows), nil
	case "max_categorical_charts":
		return strconv.Itoa(c.MaxCategoricalCharts), nil
	case "max_pairplot_columns":
		return strconv.Itoa(c.MaxPairplotColumns), nil
	case "histogram_bins":
		return strconv.Itoa(c.HistogramBins), nil
	case "chart_font":
		return c.ChartFont, nil
	case "history_db":
		return c.HistoryDB, nil
	case "history_enabled":
		return strconv.FormatBool(c.HistoryEnabled), nil
	case "log_level":
		return c.LogLevel, nil
	case "report_formats":
		return strings.Join(c.ReportFormats, ","), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val into key and validates the result. On error c is unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "output_dir":
		next.OutputDir = val
	case "delimiter":
		next.Delimiter = normalizeDelimiter(val)
	case "detect_dates", "history_enabled":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "detect_dates" {
			next.DetectDates = b
		} else {
			next.HistoryEnabled = b
		}
	case "sheet_name":
		next.SheetName = val
	case "max_rows", "max_categorical_charts", "max_pairplot_columns", "histogram_bins":
		i, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		switch key {
		case "max_rows":
			next.MaxRows = i
		case "max_categorical_charts":
			next.MaxCategoricalCharts = i
		case "max_pairplot_columns":
			next.MaxPairplotColumns = i
		default:
			next.HistogramBins = i
		}
	case "chart_font":
		next.ChartFont = val
	case "history_db":
		next.HistoryDB = val
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "report_formats":
		var fs []string
		for _, f := range strings.Split(val, ",") {
			if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
				fs = append(fs, f)
			}
		}
		next.ReportFormats = fs
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func normalizeDelimiter(s string) string {
	switch strings.ToLower(s) {
	case ",":
		return "comma"
	case ";":
		return "semicolon"
	case "\t", `\t`:
		return "tab"
	case "|":
		return "pipe"
	}
	return strings.ToLower(s)
}

// Dir is the per-user configuration directory, ~/.tidyloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tidyloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tidyloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env (TIDYLOOM_*, .env included) > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TIDYLOOM")
	v.AutomaticEnv()

	v.SetDefault("output_dir", "reports")
	v.SetDefault("delimiter", "auto")
	v.SetDefault("detect_dates", false)
	v.SetDefault("sheet_name", "")
	v.SetDefault("max_rows", 0)
	v.SetDefault("max_categorical_charts", 3)
	v.SetDefault("max_pairplot_columns", 4)
	v.SetDefault("histogram_bins", 20)
	v.SetDefault("chart_font", "")
	v.SetDefault("history_db", "")
	v.SetDefault("history_enabled", true)
	v.SetDefault("log_level", "warn")
	v.SetDefault("report_formats", []string{"html"})

	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(dir, "history.db")
	}
	c.Delimiter = normalizeDelimiter(c.Delimiter)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
