// Package config provides Viper-based configuration loading for the
// cipherduel client.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds the game server endpoints.
type ServerConfig struct {
	// BaseURL is the HTTP base URL of the game server (REST surface).
	BaseURL string `mapstructure:"base_url"`
	// SocketPath is the websocket path appended to BaseURL for the
	// persistent event connection.
	SocketPath string `mapstructure:"socket_path"`
}

// SocketURL returns the websocket endpoint derived from BaseURL: the scheme
// is rewritten http→ws / https→wss and SocketPath is appended.
//
// Precondition: BaseURL must be a valid http(s) URL.
// Postcondition: Returns a ws(s) URL or a non-nil error.
func (s ServerConfig) SocketURL() (string, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base_url %q: %w", s.BaseURL, err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("base_url scheme must be http or https, got %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + s.SocketPath
	return u.String(), nil
}

// TransportConfig holds the connection retry policy.
type TransportConfig struct {
	// Reconnection enables automatic reconnects after a transport loss.
	Reconnection bool `mapstructure:"reconnection"`
	// MaxAttempts is the consecutive-failure ceiling before retrying stops.
	MaxAttempts int `mapstructure:"max_attempts"`
	// RetryDelay is the pause between consecutive connection attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
	// ConnectTimeout bounds each individual connection attempt.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// GuardConfig holds the hint-similarity policy.
type GuardConfig struct {
	// Threshold is the edit-distance ceiling at or below which a hint is
	// rejected as too similar to the secret word.
	Threshold int `mapstructure:"threshold"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PracticeConfig holds the offline practice mode settings.
type PracticeConfig struct {
	// Enabled switches the client into local practice play.
	Enabled bool `mapstructure:"enabled"`
	// Model is the Anthropic model id used by the local interceptor.
	Model string `mapstructure:"model"`
	// MaxRounds bounds a practice game.
	MaxRounds int `mapstructure:"max_rounds"`
	// WordsFile is the YAML secret-word list for practice rounds.
	WordsFile string `mapstructure:"words_file"`
}

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Transport TransportConfig `mapstructure:"transport"`
	Guard     GuardConfig     `mapstructure:"guard"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Practice  PracticeConfig  `mapstructure:"practice"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateServer(c.Server); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTransport(c.Transport); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Guard.Threshold < 0 {
		errs = append(errs, fmt.Sprintf("guard.threshold must be >= 0, got %d", c.Guard.Threshold))
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePractice(c.Practice); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.BaseURL == "" {
		errs = append(errs, "server.base_url must not be empty")
	} else if _, err := s.SocketURL(); err != nil {
		errs = append(errs, fmt.Sprintf("server.base_url is invalid: %v", err))
	}
	if s.SocketPath == "" || !strings.HasPrefix(s.SocketPath, "/") {
		errs = append(errs, fmt.Sprintf("server.socket_path must start with '/', got %q", s.SocketPath))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTransport(t TransportConfig) error {
	var errs []string
	if t.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("transport.max_attempts must be >= 1, got %d", t.MaxAttempts))
	}
	if t.RetryDelay < 0 {
		errs = append(errs, "transport.retry_delay must not be negative")
	}
	if t.ConnectTimeout <= 0 {
		errs = append(errs, "transport.connect_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validatePractice(p PracticeConfig) error {
	if !p.Enabled {
		return nil
	}
	var errs []string
	if p.Model == "" {
		errs = append(errs, "practice.model must not be empty when practice is enabled")
	}
	if p.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("practice.max_rounds must be >= 1, got %d", p.MaxRounds))
	}
	if p.WordsFile == "" {
		errs = append(errs, "practice.words_file must not be empty when practice is enabled")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CIPHERDUEL_ prefix
	v.SetEnvPrefix("CIPHERDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.base_url", "http://localhost:3001")
	v.SetDefault("server.socket_path", "/socket")

	v.SetDefault("transport.reconnection", true)
	v.SetDefault("transport.max_attempts", 3)
	v.SetDefault("transport.retry_delay", "2s")
	v.SetDefault("transport.connect_timeout", "10s")

	v.SetDefault("guard.threshold", 2)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("practice.enabled", false)
	v.SetDefault("practice.model", "claude-sonnet-4-5")
	v.SetDefault("practice.max_rounds", 5)
	v.SetDefault("practice.words_file", "configs/practice_words.yaml")
}
