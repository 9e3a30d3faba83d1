// Package config provides configuration management for the LaTeX speech engine.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"latex-speech/internal/logger"
	"latex-speech/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "latex-speech-config.json"

	// EnvDatabaseURL overrides the Postgres pattern store URL
	EnvDatabaseURL = "LATEX_SPEECH_DATABASE_URL"
	// EnvRedisURL overrides the Redis result cache URL
	EnvRedisURL = "LATEX_SPEECH_REDIS_URL"
	// EnvPatternDir overrides the pattern definition directory
	EnvPatternDir = "LATEX_SPEECH_PATTERN_DIR"

	// DefaultMaxLength is the maximum accepted expression length in bytes
	DefaultMaxLength = 10000
	// DefaultMaxNestingDepth is the maximum accepted brace nesting depth
	DefaultMaxNestingDepth = 20
	// DefaultMaxCommandNameLength is the maximum accepted backslash-command name length
	DefaultMaxCommandNameLength = 50
	// DefaultMaxCharRepetition is the per-character repetition threshold for
	// structural characters; repetition beyond it is treated as a DoS attempt
	DefaultMaxCharRepetition = 1000
	// DefaultMaxIterations bounds the rewrite fixpoint loop
	DefaultMaxIterations = 10
)

// ValidationLimits configures the expression validator.
type ValidationLimits struct {
	MaxLength            int `json:"max_length"`
	MaxNestingDepth      int `json:"max_nesting_depth"`
	MaxCommandNameLength int `json:"max_command_name_length"`
	MaxCharRepetition    int `json:"max_char_repetition"`
}

// DefaultLimits returns the validation limits used when nothing is configured.
func DefaultLimits() ValidationLimits {
	return ValidationLimits{
		MaxLength:            DefaultMaxLength,
		MaxNestingDepth:      DefaultMaxNestingDepth,
		MaxCommandNameLength: DefaultMaxCommandNameLength,
		MaxCharRepetition:    DefaultMaxCharRepetition,
	}
}

// Config holds the full application configuration.
type Config struct {
	Limits          ValidationLimits    `json:"limits"`
	MaxIterations   int                 `json:"max_iterations"`
	PatternDir      string              `json:"pattern_dir"`
	DatabaseURL     string              `json:"database_url"`
	RedisURL        string              `json:"redis_url"`
	DefaultAudience types.AudienceLevel `json:"default_audience"`
}

// Manager loads and persists the application configuration.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a Manager reading from configPath. If configPath is
// empty, the default path under the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "latex-speech", DefaultConfigFileName)
	}

	return &Manager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *Config {
	return &Config{
		Limits:          DefaultLimits(),
		MaxIterations:   DefaultMaxIterations,
		PatternDir:      "patterns",
		DatabaseURL:     "",
		RedisURL:        "",
		DefaultAudience: types.AudienceUndergraduate,
	}
}

// Load loads configuration from the config file. A missing file is not an
// error; defaults apply. Environment variables take precedence over file
// values for the store, cache and pattern locations.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		cfg := defaultConfig()
		if err := json.Unmarshal(data, cfg); err != nil {
			logger.Error("failed to parse config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to parse config file", err)
		}
		m.config = cfg
	}

	m.applyEnvOverrides()

	if err := m.config.validate(); err != nil {
		return err
	}

	logger.Debug("configuration loaded",
		logger.String("path", m.configPath),
		logger.Int("maxLength", m.config.Limits.MaxLength),
		logger.Int("maxIterations", m.config.MaxIterations))
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func (m *Manager) applyEnvOverrides() {
	m.config.DatabaseURL = getEnv(EnvDatabaseURL, m.config.DatabaseURL)
	m.config.RedisURL = getEnv(EnvRedisURL, m.config.RedisURL)
	m.config.PatternDir = getEnv(EnvPatternDir, m.config.PatternDir)
}

// validate sanity-checks loaded values, falling back to defaults for
// non-positive limits rather than failing.
func (c *Config) validate() error {
	if c.Limits.MaxLength <= 0 {
		c.Limits.MaxLength = DefaultMaxLength
	}
	if c.Limits.MaxNestingDepth <= 0 {
		c.Limits.MaxNestingDepth = DefaultMaxNestingDepth
	}
	if c.Limits.MaxCommandNameLength <= 0 {
		c.Limits.MaxCommandNameLength = DefaultMaxCommandNameLength
	}
	if c.Limits.MaxCharRepetition <= 0 {
		c.Limits.MaxCharRepetition = DefaultMaxCharRepetition
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.DefaultAudience == "" {
		c.DefaultAudience = types.AudienceUndergraduate
	}
	if !c.DefaultAudience.Valid() {
		return types.NewAppErrorWithDetails(types.ErrConfig,
			"invalid default audience", string(c.DefaultAudience), nil)
	}
	return nil
}

// Save writes the current configuration to the config file.
func (m *Manager) Save() error {
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved", logger.String("path", m.configPath))
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	return m.config
}

// getEnv returns the environment value for key, or fallback when unset.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
