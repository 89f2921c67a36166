// Package config handles the XDG configuration directory, the optional
// config.toml file and the stored API token.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"taskview/internal/logging"
)

const (
	// AppName is the application directory name.
	AppName = "taskview"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.toml"

	// TokenFile is the stored API token filename.
	TokenFile = "token.json"

	// LogFile receives logs while the interactive UI owns the terminal.
	LogFile = "taskview.log"

	// EnvAPIURL overrides the API base URL.
	EnvAPIURL = "TASKVIEW_API_URL"

	// EnvToken overrides the stored token.
	EnvToken = "TASKVIEW_TOKEN"

	// DefaultAPIURL is the API base URL when nothing is configured.
	DefaultAPIURL = "http://localhost:8080"

	// DefaultTimeout bounds each API call.
	DefaultTimeout = 5 * time.Second
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// APIURL is the base URL of the task API.
	APIURL string

	// Timeout bounds each API call.
	Timeout time.Duration

	// LogLevel is used when Debug is off.
	LogLevel string

	// Filter is the initial view filter (all, active, completed).
	Filter string

	// Token is sent as a Bearer token when non-empty.
	Token string

	// Logger is set by the dispatcher once flags are parsed.
	Logger *log.Logger
}

// fileConfig is the shape of config.toml.
type fileConfig struct {
	APIURL   string `toml:"api_url"`
	Timeout  string `toml:"timeout"`
	LogLevel string `toml:"log_level"`
	Filter   string `toml:"filter"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/taskview or $HOME/.config/taskview.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:      dir,
		APIURL:   DefaultAPIURL,
		Timeout:  DefaultTimeout,
		LogLevel: "warn",
		Filter:   "all",
	}, nil
}

// Load creates a Config and layers, in order: defaults, config.toml,
// the stored token, then environment variables.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if err := cfg.loadFile(); err != nil {
		return nil, err
	}
	if tok, err := cfg.LoadToken(); err == nil {
		cfg.Token = tok.AccessToken
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg.loadEnv()
	return cfg, nil
}

func (c *Config) loadFile() error {
	var fc fileConfig
	if _, err := toml.DecodeFile(c.FilePath(), &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", c.FilePath(), err)
	}

	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("loading %s: invalid timeout %q", c.FilePath(), fc.Timeout)
		}
		c.Timeout = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.Filter != "" {
		c.Filter = fc.Filter
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		c.Token = v
	}
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// FilePath returns the path to config.toml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// LogPath returns the path of the UI log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// LoadToken reads the stored token.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	return &tok, nil
}

// SaveToken writes the token with mode 0600, creating the directory.
func (c *Config) SaveToken(tok *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// BearerToken returns the configured token as an oauth2.Token, or nil.
func (c *Config) BearerToken() *oauth2.Token {
	if c.Token == "" {
		return nil
	}
	return &oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}
}

// Level returns the effective log level.
func (c *Config) Level() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}

// Log returns the configured logger, or one that discards.
func (c *Config) Log() *log.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}
