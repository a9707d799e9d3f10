// Package config loads cipherstudio settings.
//
// Precedence (highest first):
//  1. command-line flags (applied by the cli package)
//  2. CIPHERSTUDIO_* environment variables
//  3. YAML file ($CIPHERSTUDIO_CONFIG_DIR/config.yaml, default ~/.cipherstudio/config.yaml)
//  4. built-in defaults
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"cipherstudio-cli/internal/logging"
	"cipherstudio-cli/internal/store"
)

const (
	envPrefix         = "CIPHERSTUDIO_"
	configFileName    = "config.yaml"
	maxConfigFileSize = 1024 * 1024

	DefaultProjectID   = "demo"
	DefaultPreviewAddr = "127.0.0.1:5173"
)

type Config struct {
	DataDir        string         `koanf:"data_dir"`
	Backend        string         `koanf:"backend"`
	Namespace      string         `koanf:"namespace"`
	DefaultProject string         `koanf:"default_project"`
	Log            logging.Config `koanf:"log"`
	Preview        PreviewConfig  `koanf:"preview"`
}

type PreviewConfig struct {
	Addr string `koanf:"addr"`
}

// Dir returns the configuration directory. CIPHERSTUDIO_CONFIG_DIR overrides it
// so tests never touch the real home directory.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cipherstudio"), nil
}

// Load reads path (or the default config file when path is empty), then the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		path = filepath.Join(dir, configFileName)
	}

	content, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	if len(content) > 0 {
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// CIPHERSTUDIO_DATA_DIR -> data_dir, CIPHERSTUDIO_LOG_LEVEL -> log.level,
	// CIPHERSTUDIO_PREVIEW_ADDR -> preview.addr
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}
	return io.ReadAll(f)
}

var sections = map[string]bool{"log": true, "preview": true}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if key == "config_dir" {
		// Consumed by Dir, not part of the document.
		return ""
	}
	parts := strings.SplitN(key, "_", 2)
	if len(parts) == 2 && sections[parts[0]] {
		return parts[0] + "." + parts[1]
	}
	return key
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() error {
	if strings.TrimSpace(c.DataDir) == "" {
		dir, err := Dir()
		if err != nil {
			return fmt.Errorf("failed to resolve data dir: %w", err)
		}
		c.DataDir = filepath.Join(dir, "data")
	}
	if c.Backend == "" {
		c.Backend = store.BackendSQLite
	}
	if c.Namespace == "" {
		c.Namespace = store.DefaultNamespace
	}
	if c.DefaultProject == "" {
		c.DefaultProject = DefaultProjectID
	}
	def := logging.DefaultConfig()
	if c.Log.Level == "" {
		c.Log.Level = def.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Format
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = DefaultPreviewAddr
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Backend {
	case store.BackendSQLite, store.BackendFiles, store.BackendMemory:
	default:
		return fmt.Errorf("backend must be one of sqlite|files|memory, got %q", c.Backend)
	}
	if strings.ContainsAny(c.Namespace, " \t\n") {
		return fmt.Errorf("namespace must not contain whitespace: %q", c.Namespace)
	}
	return c.Log.Validate()
}
