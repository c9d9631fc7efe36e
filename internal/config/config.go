// internal/config/config.go
//
// Console configuration lives in a .vaultmon directory (VAULTMON_HOME
// overrides the default under the user's home). The file is created with
// commented defaults on first launch so operators can edit it in place.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// VaultmonDir is the directory holding config, state and logs.
	VaultmonDir = ".vaultmon"

	configFileName = "config.yaml"

	defaultBaseURL = "http://localhost:5000"

	defaultRequestTimeoutSeconds = 10
	defaultDashboardPollSeconds  = 10
	defaultStatusPollSeconds     = 5
	defaultHealthPollSeconds     = 30
	defaultReconnectDelaySeconds = 2
	defaultReconnectMaxSeconds   = 60
)

const defaultConfigYAML = `# vaultmon console configuration
version: 1

server:
  # Base URL of the archive-warehouse monitoring backend.
  base_url: http://localhost:5000
  request_timeout_seconds: 10
  ws_reconnect_delay_seconds: 2
  ws_reconnect_max_seconds: 60

poll:
  dashboard_seconds: 10
  collection_status_seconds: 5
  health_seconds: 30

ui:
  sidebar_collapsed: false
`

// ServerConfig describes how to reach the monitoring backend.
type ServerConfig struct {
	BaseURL                 string `yaml:"base_url"`
	RequestTimeoutSeconds   int    `yaml:"request_timeout_seconds"`
	WSReconnectDelaySeconds int    `yaml:"ws_reconnect_delay_seconds"`
	WSReconnectMaxSeconds   int    `yaml:"ws_reconnect_max_seconds"`
}

// PollConfig holds the background refresh cadences.
type PollConfig struct {
	DashboardSeconds        int `yaml:"dashboard_seconds"`
	CollectionStatusSeconds int `yaml:"collection_status_seconds"`
	HealthSeconds           int `yaml:"health_seconds"`
}

// UIConfig carries persisted client-side presentation state.
type UIConfig struct {
	SidebarCollapsed bool `yaml:"sidebar_collapsed"`
}

// FileConfig models the on-disk config.yaml.
type FileConfig struct {
	Version int          `yaml:"version"`
	Server  ServerConfig `yaml:"server"`
	Poll    PollConfig   `yaml:"poll"`
	UI      UIConfig     `yaml:"ui"`
}

// Config holds the runtime configuration for the console.
type Config struct {
	// HomeDir is the resolved .vaultmon directory.
	HomeDir string

	File FileConfig
}

// New resolves the vaultmon home directory, materializes it on first run,
// and loads config.yaml.
func New() (*Config, error) {
	home := strings.TrimSpace(os.Getenv("VAULTMON_HOME"))
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home dir: %w", err)
		}
		home = filepath.Join(userHome, VaultmonDir)
	}
	return NewAt(home)
}

// NewAt loads configuration rooted at an explicit directory. Tests use this
// with t.TempDir.
func NewAt(home string) (*Config, error) {
	if err := os.MkdirAll(filepath.Join(home, "logs"), 0o755); err != nil {
		return nil, fmt.Errorf("config: ensure vaultmon dir: %w", err)
	}
	cfg := &Config{
		HomeDir: home,
		File:    defaultFileConfig(),
	}
	if err := ensureConfigFile(cfg.ConfigPath()); err != nil {
		return nil, err
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigPath returns the on-disk location of config.yaml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.HomeDir, configFileName)
}

// LogPath returns the logbook file location.
func (c *Config) LogPath() string {
	return filepath.Join(c.HomeDir, "logs", "console.log")
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.File.Server.BaseURL, "/")
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.File.Server.RequestTimeoutSeconds) * time.Second
}

// WSReconnectDelay returns the initial websocket reconnect delay.
func (c *Config) WSReconnectDelay() time.Duration {
	return time.Duration(c.File.Server.WSReconnectDelaySeconds) * time.Second
}

// WSReconnectMax caps the websocket reconnect backoff.
func (c *Config) WSReconnectMax() time.Duration {
	return time.Duration(c.File.Server.WSReconnectMaxSeconds) * time.Second
}

// DashboardPoll returns the dashboard refresh interval.
func (c *Config) DashboardPoll() time.Duration {
	return time.Duration(c.File.Poll.DashboardSeconds) * time.Second
}

// CollectionStatusPoll returns the collection-status refresh interval.
func (c *Config) CollectionStatusPoll() time.Duration {
	return time.Duration(c.File.Poll.CollectionStatusSeconds) * time.Second
}

// HealthPoll returns the backend health probe interval.
func (c *Config) HealthPoll() time.Duration {
	return time.Duration(c.File.Poll.HealthSeconds) * time.Second
}

// SidebarCollapsed reports the persisted sidebar preference.
func (c *Config) SidebarCollapsed() bool {
	return c.File.UI.SidebarCollapsed
}

// SetSidebarCollapsed updates the sidebar preference and persists it so the
// next launch restores the operator's layout.
func (c *Config) SetSidebarCollapsed(collapsed bool) error {
	c.File.UI.SidebarCollapsed = collapsed
	return c.save()
}

func (c *Config) load() error {
	path := c.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.File = parsed
	return nil
}

func (c *Config) save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.applyDefaults()
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write config: %w", err)
	}
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Server: ServerConfig{
			BaseURL:                 defaultBaseURL,
			RequestTimeoutSeconds:   defaultRequestTimeoutSeconds,
			WSReconnectDelaySeconds: defaultReconnectDelaySeconds,
			WSReconnectMaxSeconds:   defaultReconnectMaxSeconds,
		},
		Poll: PollConfig{
			DashboardSeconds:        defaultDashboardPollSeconds,
			CollectionStatusSeconds: defaultStatusPollSeconds,
			HealthSeconds:           defaultHealthPollSeconds,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if strings.TrimSpace(fc.Server.BaseURL) == "" {
		fc.Server.BaseURL = defaultBaseURL
	}
	if fc.Server.RequestTimeoutSeconds <= 0 {
		fc.Server.RequestTimeoutSeconds = defaultRequestTimeoutSeconds
	}
	if fc.Server.WSReconnectDelaySeconds <= 0 {
		fc.Server.WSReconnectDelaySeconds = defaultReconnectDelaySeconds
	}
	if fc.Server.WSReconnectMaxSeconds <= 0 {
		fc.Server.WSReconnectMaxSeconds = defaultReconnectMaxSeconds
	}
	if fc.Poll.DashboardSeconds <= 0 {
		fc.Poll.DashboardSeconds = defaultDashboardPollSeconds
	}
	if fc.Poll.CollectionStatusSeconds <= 0 {
		fc.Poll.CollectionStatusSeconds = defaultStatusPollSeconds
	}
	if fc.Poll.HealthSeconds <= 0 {
		fc.Poll.HealthSeconds = defaultHealthPollSeconds
	}
}

func (fc *FileConfig) normalize() {
	fc.Server.BaseURL = strings.TrimRight(strings.TrimSpace(fc.Server.BaseURL), "/")
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	parsed, err := url.Parse(fc.Server.BaseURL)
	if err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("server.base_url must be http or https, got %q", fc.Server.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("server.base_url is missing a host")
	}
	if fc.Server.RequestTimeoutSeconds > 120 {
		return fmt.Errorf("server.request_timeout_seconds must be <= 120")
	}
	return nil
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
