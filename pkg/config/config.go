package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents the application configuration.
type Config struct {
	// Source tracker scope
	Organization string `env:"GITHUB_ORG" validate:"required"`
	Repository   string `env:"GITHUB_REPO" validate:"required"`

	// Target system scope
	TeamProject string `env:"TEAM_PROJECT" validate:"required"`
	AreaPath    string `env:"AREA_PATH"`
	MarkerTag   string `env:"MARKER_TAG" default:"github-issue"`

	// Sync behavior
	BatchSize             int           `env:"BATCH_SIZE" default:"50"`
	RateLimitDelay        time.Duration `env:"RATE_LIMIT_DELAY" default:"500ms"`
	PrefetchWidth         int           `env:"PREFETCH_WIDTH" default:"4"`
	ContinueOnError       bool          `env:"CONTINUE_ON_ERROR" default:"true"`
	AllowHistoricalFields bool          `env:"ALLOW_HISTORICAL_FIELDS" default:"false"`
	DefaultIterationDays  int           `env:"DEFAULT_ITERATION_DAYS" default:"14"`
	MappingFile           string        `env:"MAPPING_FILE" default:"mapping.yaml"`
	ReportFile            string        `env:"REPORT_FILE"`

	// Feature flags
	Flags FeatureFlags

	// Application configuration
	LogLevel  string `env:"LOG_LEVEL" validate:"oneof=debug info warn error" default:"info"`
	LogFormat string `env:"LOG_FORMAT" validate:"oneof=text json" default:"text"`
}

// FeatureFlags gate individual field syncs. Each flag maps to a SYNC_*
// environment variable; every flag defaults to on except the historical
// date fields, hierarchy links and the source back-reference, which
// mutate beyond the single work item.
type FeatureFlags struct {
	SyncTitle         bool `env:"SYNC_TITLE" default:"true"`
	SyncDescription   bool `env:"SYNC_DESCRIPTION" default:"true"`
	SyncState         bool `env:"SYNC_STATE" default:"true"`
	SyncAssignees     bool `env:"SYNC_ASSIGNEES" default:"true"`
	SyncLabels        bool `env:"SYNC_LABELS" default:"true"`
	SyncComments      bool `env:"SYNC_COMMENTS" default:"true"`
	SyncDates         bool `env:"SYNC_DATES" default:"false"`
	SyncHierarchy     bool `env:"SYNC_HIERARCHY" default:"false"`
	SyncProjectStatus bool `env:"SYNC_PROJECT_STATUS" default:"true"`
	CreateIterations  bool `env:"CREATE_ITERATIONS" default:"true"`
	AddBackReference  bool `env:"ADD_BACK_REFERENCE" default:"false"`
}

// Provider defines the interface for configuration management.
// This enables dependency injection and easy testing.
type Provider interface {
	Load() (*Config, error)
	Validate(*Config) error
	LoadFromEnv() (*Config, error)
}

// Loader implements the Provider interface.
type Loader struct {
	envLoader EnvLoader
}

// EnvLoader defines the interface for environment variable loading.
// This allows testing with mock environment variables.
type EnvLoader interface {
	Getenv(key string) string
	LookupEnv(key string) (string, bool)
}

// OSEnvLoader implements EnvLoader using the os package.
type OSEnvLoader struct{}

func (o *OSEnvLoader) Getenv(key string) string {
	return os.Getenv(key)
}

func (o *OSEnvLoader) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// NewLoader creates a new configuration loader.
func NewLoader() Provider {
	return &Loader{envLoader: &OSEnvLoader{}}
}

// NewLoaderWithEnv creates a loader with a custom environment loader (for testing).
func NewLoaderWithEnv(envLoader EnvLoader) Provider {
	return &Loader{envLoader: envLoader}
}

// Load loads configuration from environment variables.
func (l *Loader) Load() (*Config, error) {
	return l.LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables.
func (l *Loader) LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.Organization = l.envLoader.Getenv("GITHUB_ORG")
	config.Repository = l.envLoader.Getenv("GITHUB_REPO")
	config.TeamProject = l.envLoader.Getenv("TEAM_PROJECT")
	config.AreaPath = l.getEnvWithDefault("AREA_PATH", config.TeamProject)
	config.MarkerTag = l.getEnvWithDefault("MARKER_TAG", "github-issue")

	config.BatchSize = l.getIntWithDefault("BATCH_SIZE", 50)
	config.RateLimitDelay = l.getDurationWithDefault("RATE_LIMIT_DELAY", 500*time.Millisecond)
	config.PrefetchWidth = l.getIntWithDefault("PREFETCH_WIDTH", 4)
	config.ContinueOnError = l.getBoolWithDefault("CONTINUE_ON_ERROR", true)
	config.AllowHistoricalFields = l.getBoolWithDefault("ALLOW_HISTORICAL_FIELDS", false)
	config.DefaultIterationDays = l.getIntWithDefault("DEFAULT_ITERATION_DAYS", 14)
	config.MappingFile = l.getEnvWithDefault("MAPPING_FILE", "mapping.yaml")
	config.ReportFile = l.envLoader.Getenv("REPORT_FILE")

	config.Flags = FeatureFlags{
		SyncTitle:         l.getBoolWithDefault("SYNC_TITLE", true),
		SyncDescription:   l.getBoolWithDefault("SYNC_DESCRIPTION", true),
		SyncState:         l.getBoolWithDefault("SYNC_STATE", true),
		SyncAssignees:     l.getBoolWithDefault("SYNC_ASSIGNEES", true),
		SyncLabels:        l.getBoolWithDefault("SYNC_LABELS", true),
		SyncComments:      l.getBoolWithDefault("SYNC_COMMENTS", true),
		SyncDates:         l.getBoolWithDefault("SYNC_DATES", false),
		SyncHierarchy:     l.getBoolWithDefault("SYNC_HIERARCHY", false),
		SyncProjectStatus: l.getBoolWithDefault("SYNC_PROJECT_STATUS", true),
		CreateIterations:  l.getBoolWithDefault("CREATE_ITERATIONS", true),
		AddBackReference:  l.getBoolWithDefault("ADD_BACK_REFERENCE", false),
	}

	config.LogLevel = l.getEnvWithDefault("LOG_LEVEL", "info")
	config.LogFormat = l.getEnvWithDefault("LOG_FORMAT", "text")

	if err := l.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (l *Loader) Validate(config *Config) error {
	var errors []string

	if config.Organization == "" {
		errors = append(errors, "GITHUB_ORG is required")
	}
	if config.Repository == "" {
		errors = append(errors, "GITHUB_REPO is required")
	}
	if config.TeamProject == "" {
		errors = append(errors, "TEAM_PROJECT is required")
	}

	if config.BatchSize < 1 {
		errors = append(errors, "BATCH_SIZE must be at least 1")
	}
	if config.RateLimitDelay < 0 {
		errors = append(errors, "RATE_LIMIT_DELAY must be non-negative")
	}
	if config.PrefetchWidth < 1 {
		errors = append(errors, "PREFETCH_WIDTH must be at least 1")
	}
	if config.DefaultIterationDays < 1 {
		errors = append(errors, "DEFAULT_ITERATION_DAYS must be at least 1")
	}
	if config.MappingFile == "" {
		errors = append(errors, "MAPPING_FILE is required")
	}

	if err := l.validateOneOf("LOG_LEVEL", config.LogLevel, []string{"debug", "info", "warn", "error"}); err != nil {
		errors = append(errors, err.Error())
	}
	if err := l.validateOneOf("LOG_FORMAT", config.LogFormat, []string{"text", "json"}); err != nil {
		errors = append(errors, err.Error())
	}

	if len(errors) > 0 {
		return &ValidationError{Errors: errors}
	}
	return nil
}

// ValidationError represents configuration validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Helper methods

func (l *Loader) getEnvWithDefault(key, defaultValue string) string {
	if value := l.envLoader.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (l *Loader) validateOneOf(key, value string, valid []string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("%s is invalid: must be one of: %s", key, strings.Join(valid, ", "))
}

// getDurationWithDefault gets a duration from the environment with fallback to a default.
func (l *Loader) getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr := l.envLoader.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

// getIntWithDefault gets an integer from the environment with fallback to a default.
func (l *Loader) getIntWithDefault(key string, defaultValue int) int {
	valueStr := l.envLoader.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getBoolWithDefault gets a boolean from the environment with fallback to a default.
func (l *Loader) getBoolWithDefault(key string, defaultValue bool) bool {
	valueStr := l.envLoader.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
