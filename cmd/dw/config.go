package main

import (
	"fmt"
	"strings"

	"github.com/franz/hiring-dw/internal/report"
	"github.com/franz/hiring-dw/internal/util"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Defaults shared by the commands
const (
	DefaultCSVPath     = "data/candidates.csv"
	DefaultDBPath      = "dw/dw_hiring.db"
	DefaultSchemaPath  = "dw/schema.sql"
	DefaultPlotsDir    = "plots"
	DefaultEventLogDir = "artifacts"
)

var validate = validator.New()

// LoadConfig is the resolved configuration of `dw load`
type LoadConfig struct {
	CSVPath     string `validate:"required"`
	DBPath      string `validate:"required,nefield=CSVPath"`
	SchemaPath  string `validate:"required"`
	EventLogDir string
	SummaryPath string `validate:"omitempty,endswith=.md"`
	Strict      bool
}

// ReportConfig is the resolved configuration of `dw report`
type ReportConfig struct {
	DBPath      string   `validate:"required"`
	OutDir      string   `validate:"required"`
	Countries   []string `validate:"dive,required"`
	XLSXPath    string   `validate:"omitempty,endswith=.xlsx"`
	EventLogDir string
}

// GetConfigString retrieves a string config value with proper precedence:
// 1. Command-line flag (if set)
// 2. Environment variable (DW_*)
// 3. Config file
// 4. Flag default
func GetConfigString(cmd *cobra.Command, flag, key string) string {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	if viper.IsSet(key) {
		if val := viper.GetString(key); val != "" {
			return val
		}
	}
	if f := cmd.Flags().Lookup(flag); f != nil {
		return f.DefValue
	}
	return ""
}

// GetConfigBool retrieves a bool config value with the same precedence
func GetConfigBool(cmd *cobra.Command, flag, key string) bool {
	if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
		v, _ := cmd.Flags().GetBool(flag)
		return v
	}
	return viper.GetBool(key)
}

// GetConfigStringSlice retrieves a string slice config value, or def when unset
func GetConfigStringSlice(key string, def []string) []string {
	if !viper.IsSet(key) {
		return def
	}
	return viper.GetStringSlice(key)
}

func resolveLoadConfig(cmd *cobra.Command) (*LoadConfig, error) {
	cfg := &LoadConfig{
		CSVPath:     GetConfigString(cmd, "csv", "csv"),
		DBPath:      GetConfigString(cmd, "db", "db"),
		SchemaPath:  viper.GetString("schema"),
		EventLogDir: GetConfigString(cmd, "event-log-dir", "event_log_dir"),
		SummaryPath: GetConfigString(cmd, "summary", "summary"),
		Strict:      GetConfigBool(cmd, "strict", "strict"),
	}
	if cfg.SchemaPath == "" {
		cfg.SchemaPath = DefaultSchemaPath
	}

	return cfg, validateConfig(cfg)
}

func resolveReportConfig(cmd *cobra.Command) (*ReportConfig, error) {
	cfg := &ReportConfig{
		DBPath:      GetConfigString(cmd, "db", "db"),
		OutDir:      GetConfigString(cmd, "out", "out"),
		Countries:   GetConfigStringSlice("countries", report.DefaultCountries),
		XLSXPath:    GetConfigString(cmd, "xlsx", "xlsx"),
		EventLogDir: GetConfigString(cmd, "event-log-dir", "event_log_dir"),
	}
	countries := make([]string, len(cfg.Countries))
	for i, c := range cfg.Countries {
		countries[i] = strings.TrimSpace(c)
	}
	cfg.Countries = countries

	return cfg, validateConfig(cfg)
}

func validateConfig(cfg interface{}) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidConfig, err)
	}
	return nil
}

// eventLogLevel picks the event log level from the console verbosity
func eventLogLevel() report.EventLevel {
	switch {
	case viper.GetBool("quiet"):
		return report.LevelWarning
	case viper.GetBool("verbose"):
		return report.LevelDebug
	default:
		return report.LevelInfo
	}
}

// openEventLogger opens the JSONL event log, or returns a nil logger when
// dir is empty
func openEventLogger(dir, runID string) (*report.EventLogger, error) {
	if dir == "" {
		return report.NullLogger(), nil
	}
	logger, err := report.NewEventLogger(dir, runID, eventLogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to create event logger: %w", err)
	}
	util.DebugLog("Event log: %s", logger.Path())
	return logger, nil
}
