package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"DataPipeline/internal/domain"
)

const (
	defaultConfigPath  = "config/config.yaml"
	defaultTimezone    = "UTC"
	defaultSummaryName = "data_summary.json"
	configPathEnv      = "DATAPIPELINE_CONFIG"
	logLevelEnv        = "LOG_LEVEL"
	databaseDSNEnv     = "DATABASE_DSN"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	ArtifactsRoot  string               `yaml:"artifacts_root"`
	Logging        LoggingConfig        `yaml:"logging"`
	Ingestion      IngestionConfig      `yaml:"data_ingestion"`
	Validation     ValidationConfig     `yaml:"data_validation"`
	Transformation TransformationConfig `yaml:"data_transformation"`
	Database       DatabaseConfig       `yaml:"database"`
	Notifications  NotificationConfig   `yaml:"notifications"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// IngestionConfig describes where the raw dataset comes from.
type IngestionConfig struct {
	RootDir       string   `yaml:"root_dir"`
	SourceURL     string   `yaml:"source_url"`
	LocalDataPath string   `yaml:"local_data_path"`
	Files         []string `yaml:"files"`
	JSONCopy      string   `yaml:"json_copy"`
}

// ValidationConfig drives the validation stage.
type ValidationConfig struct {
	RootDir          string   `yaml:"root_dir"`
	UnzipDir         string   `yaml:"unzip_dir"`
	DataFile         string   `yaml:"data_file"`
	StatusFile       string   `yaml:"status_file"`
	SummaryFile      string   `yaml:"summary_file"`
	AllRequiredFiles []string `yaml:"all_required_files"`
}

// DataFilePath joins the unzip dir and the data file.
func (v ValidationConfig) DataFilePath() string {
	return filepath.Join(v.UnzipDir, v.DataFile)
}

// TransformationConfig drives the feature-engineering stage.
type TransformationConfig struct {
	RootDir                string             `yaml:"root_dir"`
	DataPath               string             `yaml:"data_path"`
	DataFile               string             `yaml:"data_file"`
	TransformedDataPath    string             `yaml:"transformed_data_path"`
	LookupsDir             string             `yaml:"lookups_dir"`
	TargetColumns          []string           `yaml:"target_columns"`
	CategoricalColumns     []string           `yaml:"categorical_columns"`
	EncodeAllStringColumns bool               `yaml:"encode_all_string_columns"`
	DropColumns            []string           `yaml:"drop_columns"`
	Caps                   map[string]float64 `yaml:"caps"`
}

// DataFilePath joins the data path and the data file.
func (t TransformationConfig) DataFilePath() string {
	return filepath.Join(t.DataPath, t.DataFile)
}

// DatabaseConfig describes the optional Postgres run store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both credentials are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// SchedulerConfig defines how often the full pipeline re-runs.
type SchedulerConfig struct {
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	every    time.Duration  `yaml:"-"`
	location *time.Location `yaml:"-"`
}

// Every returns the parsed interval.
func (s SchedulerConfig) Every() time.Duration {
	return s.every
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// Path resolves the config file location from the flag value or env.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(configPathEnv); v != "" {
		return v
	}
	return defaultConfigPath
}

// Load reads the YAML document at path, merges it over the defaults,
// applies environment overrides and validates the result. A missing file
// at the default location falls back to defaults; any other read or parse
// problem is a configuration error.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileCfg, perr := parse(raw)
		if perr != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, path, perr)
		}
		cfg = mergeConfig(cfg, fileCfg)
	case errors.Is(err, os.ErrNotExist) && path == defaultConfigPath:
	default:
		return Config{}, fmt.Errorf("%w: read %s: %v", domain.ErrConfiguration, path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.bind(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parse(raw []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, errors.New("yaml file is empty")
		}
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks keys every stage depends on.
func (c Config) Validate() error {
	var problems []string
	require := func(value, key string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, key+" is required")
		}
	}

	require(c.ArtifactsRoot, "artifacts_root")
	require(c.Validation.UnzipDir, "data_validation.unzip_dir")
	require(c.Validation.DataFile, "data_validation.data_file")
	require(c.Validation.StatusFile, "data_validation.status_file")
	require(c.Transformation.DataPath, "data_transformation.data_path")
	require(c.Transformation.DataFile, "data_transformation.data_file")
	require(c.Transformation.TransformedDataPath, "data_transformation.transformed_data_path")
	require(c.Transformation.LookupsDir, "data_transformation.lookups_dir")

	if len(c.Validation.AllRequiredFiles) == 0 {
		problems = append(problems, "data_validation.all_required_files must not be empty")
	}
	if !c.Transformation.EncodeAllStringColumns && len(c.Transformation.CategoricalColumns) == 0 {
		problems = append(problems, "data_transformation.categorical_columns must not be empty unless encode_all_string_columns is set")
	}
	for col, limit := range c.Transformation.Caps {
		if strings.TrimSpace(col) == "" {
			problems = append(problems, "data_transformation.caps has an empty column name")
		}
		if limit < 0 {
			problems = append(problems, fmt.Sprintf("data_transformation.caps.%s must not be negative", col))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrConfiguration, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bind() error {
	if c.Validation.SummaryFile == "" && c.Validation.StatusFile != "" {
		c.Validation.SummaryFile = filepath.Join(filepath.Dir(c.Validation.StatusFile), defaultSummaryName)
	}

	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("%w: unknown timezone %s", domain.ErrConfiguration, tz)
	}
	c.Scheduler.location = loc

	if c.Scheduler.Interval != "" {
		every, err := time.ParseDuration(c.Scheduler.Interval)
		if err != nil || every <= 0 {
			return fmt.Errorf("%w: scheduler.interval %q is not a positive duration", domain.ErrConfiguration, c.Scheduler.Interval)
		}
		c.Scheduler.every = every
	}
	return nil
}

func mergeConfig(base, override Config) Config {
	if override.ArtifactsRoot != "" {
		base.ArtifactsRoot = override.ArtifactsRoot
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Dir != "" {
		base.Logging.Dir = override.Logging.Dir
	}

	mergeString(&base.Ingestion.RootDir, override.Ingestion.RootDir)
	mergeString(&base.Ingestion.SourceURL, override.Ingestion.SourceURL)
	mergeString(&base.Ingestion.LocalDataPath, override.Ingestion.LocalDataPath)
	mergeString(&base.Ingestion.JSONCopy, override.Ingestion.JSONCopy)
	if len(override.Ingestion.Files) > 0 {
		base.Ingestion.Files = override.Ingestion.Files
	}

	mergeString(&base.Validation.RootDir, override.Validation.RootDir)
	mergeString(&base.Validation.UnzipDir, override.Validation.UnzipDir)
	mergeString(&base.Validation.DataFile, override.Validation.DataFile)
	mergeString(&base.Validation.StatusFile, override.Validation.StatusFile)
	mergeString(&base.Validation.SummaryFile, override.Validation.SummaryFile)
	if len(override.Validation.AllRequiredFiles) > 0 {
		base.Validation.AllRequiredFiles = override.Validation.AllRequiredFiles
	}

	t := override.Transformation
	mergeString(&base.Transformation.RootDir, t.RootDir)
	mergeString(&base.Transformation.DataPath, t.DataPath)
	mergeString(&base.Transformation.DataFile, t.DataFile)
	mergeString(&base.Transformation.TransformedDataPath, t.TransformedDataPath)
	mergeString(&base.Transformation.LookupsDir, t.LookupsDir)
	if t.TargetColumns != nil {
		base.Transformation.TargetColumns = t.TargetColumns
	}
	if t.CategoricalColumns != nil {
		base.Transformation.CategoricalColumns = t.CategoricalColumns
	}
	if t.DropColumns != nil {
		base.Transformation.DropColumns = t.DropColumns
	}
	if t.Caps != nil {
		base.Transformation.Caps = t.Caps
	}
	if t.EncodeAllStringColumns || t.CategoricalColumns != nil {
		base.Transformation.EncodeAllStringColumns = t.EncodeAllStringColumns
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	mergeString(&base.Scheduler.Interval, override.Scheduler.Interval)
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func defaultConfig() Config {
	const dataFile = "mental_health_and_technology_usage_2024.csv"
	return Config{
		ArtifactsRoot: "artifacts",
		Logging:       LoggingConfig{Level: "info", Dir: "logs"},
		Ingestion: IngestionConfig{
			RootDir:       "artifacts/data_ingestion",
			LocalDataPath: "artifacts/data_ingestion",
			Files:         []string{dataFile},
		},
		Validation: ValidationConfig{
			RootDir:          "artifacts/data_validation",
			UnzipDir:         "artifacts/data_ingestion",
			DataFile:         dataFile,
			StatusFile:       "artifacts/data_validation/status.txt",
			AllRequiredFiles: []string{dataFile},
		},
		Transformation: TransformationConfig{
			RootDir:                "artifacts/data_transformation",
			DataPath:               "artifacts/data_ingestion",
			DataFile:               dataFile,
			TransformedDataPath:    "artifacts/data_transformation/transformed",
			LookupsDir:             "artifacts/lookups",
			TargetColumns:          []string{"Mental_Health_Status", "Stress_Level"},
			EncodeAllStringColumns: true,
			DropColumns:            []string{"User_ID"},
			Caps:                   map[string]float64{"Physical_Activity_Hours": 6},
		},
		Scheduler: SchedulerConfig{Interval: "", Timezone: defaultTimezone},
	}
}
