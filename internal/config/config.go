package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment overrides.
const (
	EnvServerURL = "XERCOST_SERVER_URL"
	EnvDB        = "XERCOST_DB"
)

// Config holds all xercost configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Server     ServerConfig     `toml:"server"`
	Client     ClientConfig     `toml:"client"`
	Dashboard  DashboardConfig  `toml:"dashboard"`
	Appearance AppearanceConfig `toml:"appearance"`
	Log        LogConfig        `toml:"log"`
}

// GeneralConfig holds storage locations.
type GeneralConfig struct {
	DBPath    string `toml:"db_path,omitempty"`
	ImportDir string `toml:"import_dir,omitempty"`
	Currency  string `toml:"currency"`
}

// ServerConfig holds API server settings.
type ServerConfig struct {
	Addr                 string `toml:"addr"`
	CacheTTLSeconds      int    `toml:"cache_ttl_seconds"`
	UploadsTTLSeconds    int    `toml:"uploads_ttl_seconds"`
	WatchIntervalSeconds int    `toml:"watch_interval_seconds"`
}

// ClientConfig holds settings for talking to a remote server.
// An empty BaseURL means the local database is read directly.
type ClientConfig struct {
	BaseURL        string `toml:"base_url,omitempty"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DashboardConfig holds defaults for the cost views.
type DashboardConfig struct {
	DefaultPeriod string `toml:"default_period"`
	TopN          int    `toml:"top_n"`
	NodeCount     int    `toml:"node_count"`
	Layout        string `toml:"layout"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Currency: "£",
		},
		Server: ServerConfig{
			Addr:                 "127.0.0.1:8080",
			CacheTTLSeconds:      300,
			UploadsTTLSeconds:    60,
			WatchIntervalSeconds: 0,
		},
		Client: ClientConfig{
			TimeoutSeconds: 10,
		},
		Dashboard: DashboardConfig{
			DefaultPeriod: "monthly",
			TopN:          10,
			NodeCount:     50,
			Layout:        "spring",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "xercost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "xercost")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the upload database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "xercost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "xercost")
}

// CacheDir returns the platform-appropriate cache directory (logs, pid file).
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "xercost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "xercost")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path, returning defaults if it doesn't exist.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default location.
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes the config to path.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-supplied config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DBPath returns the upload database path: env var, then config, then the data dir.
func DBPath(cfg Config) string {
	if p := os.Getenv(EnvDB); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "xercost.db")
}

// ServerURL returns the remote API base URL from env var or config, in that order.
// Empty means local mode.
func ServerURL(cfg Config) string {
	if u := os.Getenv(EnvServerURL); u != "" {
		return u
	}
	return cfg.Client.BaseURL
}

// CacheTTL is how long API responses stay cached.
func (c ServerConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// UploadsTTL is how long the upload list stays cached.
func (c ServerConfig) UploadsTTL() time.Duration {
	return time.Duration(c.UploadsTTLSeconds) * time.Second
}

// WatchInterval is how often the server rescans the import directory. Zero disables it.
func (c ServerConfig) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

// Timeout is the per-request client timeout.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
