package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"sprint-pulse/internal/productive"
	"sprint-pulse/internal/report"
	"sprint-pulse/internal/stats"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Productive          productive.Config
	Report              report.Options
	DataPath            string
	LogDir              string
	HTTPAddr            string
	EnableMermaidCharts bool
	WorkflowProfile     string
	Watch               WatchConfig
}

// WatchConfig drives the scheduled risk evaluation.
type WatchConfig struct {
	TaskLists []string
	Schedule  string
	Location  *time.Location
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory (highest priority for MCP servers)
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	return FromEnv(exeDir)
}

// FromEnv builds the configuration from the process environment only.
func FromEnv(exeDir string) (*AppConfig, error) {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	opts := report.DefaultOptions()
	opts.CapacityPerDay = getEnvFloat("CAPACITY_PER_DAY_HOURS", stats.DefaultCapacityPerDay)
	opts.WrapDays = getEnvInt("SPRINT_WRAP_DAYS", stats.DefaultWrapDays)
	opts.MaxParallelSprints = getEnvInt("MAX_PARALLEL_SPRINTS", report.DefaultMaxParallelSprints)
	opts.CountCompleteAsDone = getEnvBool("COUNT_COMPLETE_AS_DONE", true)

	cfg := &AppConfig{
		Productive: productive.Config{
			BaseURL:            getEnv("PRODUCTIVE_BASE_URL", productive.DefaultBaseURL),
			Token:              getEnv("PRODUCTIVE_API_TOKEN", ""),
			OrganizationID:     getEnv("PRODUCTIVE_ORG_ID", ""),
			ResponsibleFieldID: getEnv("PRODUCTIVE_RESPONSIBLE_FIELD_ID", productive.DefaultResponsibleFieldID),
			PageSize:           getEnvInt("PRODUCTIVE_PAGE_SIZE", productive.DefaultPageSize),
			Timeout:            getEnvDuration("PRODUCTIVE_TIMEOUT", 30*time.Second),
			RequestDelay:       getEnvDuration("PRODUCTIVE_REQUEST_DELAY", 0),
		},
		Report:              opts,
		DataPath:            dataPath,
		LogDir:              logDir,
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
		WorkflowProfile:     getEnv("WORKFLOW_PROFILE", ""),
		Watch: WatchConfig{
			TaskLists: getEnvList("WATCH_TASK_LISTS"),
			Schedule:  getEnv("WATCH_CRON", ""),
			Location:  loadLocation(getEnv("TZ", "")),
		},
	}

	if cfg.WorkflowProfile != "" {
		path := cfg.WorkflowProfile
		if !filepath.IsAbs(path) {
			path = filepath.Join(dataPath, path)
		}
		profile, err := LoadProfile(path)
		if err != nil {
			return nil, err
		}
		profile.Apply(&cfg.Report)
		log.Debug().Str("path", path).Msg("Applied workflow profile")
	}

	return cfg, nil
}

// Validate reports settings that make every upstream call fail.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Productive.Token == "" {
		errs = append(errs, errors.New("PRODUCTIVE_API_TOKEN is not set"))
	}
	if c.Productive.OrganizationID == "" {
		errs = append(errs, errors.New("PRODUCTIVE_ORG_ID is not set"))
	}
	if c.Productive.BaseURL == "" {
		errs = append(errs, errors.New("PRODUCTIVE_BASE_URL is empty"))
	}
	return errors.Join(errs...)
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("tz", name).Msg("Unknown time zone, using local time")
		return time.Local
	}
	return loc
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer setting")
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-numeric setting")
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	value = strings.TrimSpace(value)
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	log.Warn().Str("key", key).Str("value", value).Msg(fmt.Sprintf("Ignoring invalid duration, using %s", fallback))
	return fallback
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
