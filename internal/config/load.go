package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// fileSettings mirrors config.toml.
type fileSettings struct {
	Storage      string `toml:"storage"`
	Directory    string `toml:"directory"`
	SnapshotFile string `toml:"snapshot_file"`
	StorageKey   string `toml:"storage_key"`
	RedisAddr    string `toml:"redis_addr"`
	RedisDB      *int   `toml:"redis_db"`
	Model        string `toml:"model"`
	APITimeout   string `toml:"api_timeout"`
	Listen       string `toml:"listen"`
}

// Load applies config.toml (if present) and then the environment on top of
// the defaults. Flags are applied by the caller afterwards.
func (c *Config) Load() error {
	if err := c.loadFile(c.FilePath()); err != nil {
		return err
	}
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) loadFile(path string) error {
	var fsets fileSettings
	_, err := toml.DecodeFile(path, &fsets)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}

	setString(&c.Storage, fsets.Storage)
	setString(&c.Directory, expandHome(fsets.Directory))
	setString(&c.StorageKey, fsets.StorageKey)
	setString(&c.RedisAddr, fsets.RedisAddr)
	setString(&c.Model, fsets.Model)
	setString(&c.Listen, fsets.Listen)
	if fsets.SnapshotFile != "" {
		p := expandHome(fsets.SnapshotFile)
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Dir, p)
		}
		c.SnapshotPath = p
	}
	if fsets.RedisDB != nil {
		c.RedisDB = *fsets.RedisDB
	}
	if fsets.APITimeout != "" {
		d, err := time.ParseDuration(fsets.APITimeout)
		if err != nil {
			return fmt.Errorf("invalid %s: api_timeout: %w", filepath.Base(path), err)
		}
		c.APITimeout = d
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Storage, os.Getenv("DAYTASK_STORAGE"))
	if dir := os.Getenv("DAYTASK_DIR"); dir != "" {
		c.Directory = expandHome(dir)
		c.Storage = StorageDir
	}
	setString(&c.RedisAddr, os.Getenv("DAYTASK_REDIS_ADDR"))
	if db := os.Getenv("DAYTASK_REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid DAYTASK_REDIS_DB: %s", db)
		}
		c.RedisDB = n
	}
	setString(&c.Model, os.Getenv("DAYTASK_MODEL"))
	setString(&c.APIKey, strings.TrimSpace(os.Getenv("GEMINI_API_KEY")))
	return nil
}

// Validate checks settings that can be wrong in the file or environment.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSnapshot, StorageMemory, StorageRedis:
	case StorageDir:
		if c.Directory == "" {
			return fmt.Errorf("storage %q needs a directory", StorageDir)
		}
	default:
		return fmt.Errorf("unknown storage: %s", c.Storage)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
