// Package config handles the XDG configuration directory, the optional
// config.toml file and environment overrides.
package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	// AppName is the application directory name.
	AppName = "daytask"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.toml"

	// SnapshotFile is the default aggregate snapshot filename.
	SnapshotFile = "storage.json"
)

// Storage modes.
const (
	StorageSnapshot = "snapshot"
	StorageMemory   = "memory"
	StorageDir      = "dir"
	StorageRedis    = "redis"
)

// Defaults.
const (
	DefaultStorageKey = "smart_calendar_todo_v1"
	DefaultModel      = "gemini-2.5-flash"
	DefaultAPITimeout = 20 * time.Second
	DefaultListen     = "127.0.0.1:8080"
	DefaultRedisAddr  = "127.0.0.1:6379"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Storage selects the persistence strategy.
	Storage string

	// Directory is the per-date folder used when Storage is StorageDir.
	Directory string

	// SnapshotPath is the local file holding the aggregate snapshot.
	SnapshotPath string

	// StorageKey is the key the snapshot is stored under.
	StorageKey string

	RedisAddr string
	RedisDB   int

	// Model is the text-generation model used for suggestions.
	Model string

	// APITimeout bounds each call to the suggestion service.
	APITimeout time.Duration

	// Listen is the address for the HTTP API.
	Listen string

	// APIKey is the session key taken from the environment, if any.
	// It is never written anywhere by the program.
	APIKey string

	// KeyFile, when set, is loaded into the session at start-up.
	KeyFile string

	// Passphrase decrypts KeyFile when it is sealed.
	Passphrase string
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/daytask or $HOME/.config/daytask.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:          dir,
		Storage:      StorageSnapshot,
		SnapshotPath: filepath.Join(dir, SnapshotFile),
		StorageKey:   DefaultStorageKey,
		RedisAddr:    DefaultRedisAddr,
		Model:        DefaultModel,
		APITimeout:   DefaultAPITimeout,
		Listen:       DefaultListen,
	}, nil
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

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasFile checks if config.toml exists.
func (c *Config) HasFile() bool {
	_, err := os.Stat(c.FilePath())
	return err == nil
}
