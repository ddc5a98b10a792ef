package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
)

type TransportConfig struct {
	Kind    chmodel.Type `yaml:"kind"`
	URL     string       `yaml:"url"`
	Command []string     `yaml:"command,omitempty"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path"`
}

type PersistConfig struct {
	PoolSize int           `yaml:"pool_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

type TranscriptConfig struct {
	Scrollback     int `yaml:"scrollback"`
	MaxResultLines int `yaml:"max_result_lines"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type UIConfig struct {
	// SessionRefresh is a cron spec for reloading the session list.
	SessionRefresh string `yaml:"session_refresh"`
}

const (
	StoreSQLite = "sqlite"
	StoreJSONL  = "jsonl"
	StoreMemory = "memory"
)

// The configuration for codemaster.
type Config struct {
	Transport  TransportConfig  `yaml:"transport"`
	Store      StoreConfig      `yaml:"store"`
	Persist    PersistConfig    `yaml:"persist"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Log        LogConfig        `yaml:"log"`
	UI         UIConfig         `yaml:"ui"`
}

func BootstrapConfig() Config {
	return Config{
		Transport: TransportConfig{
			Kind: chmodel.WS,
			URL:  "ws://127.0.0.1:7878/events",
		},
		Store: StoreConfig{
			Driver: StoreSQLite,
			Path:   "sessions.db",
		},
		Persist: PersistConfig{
			PoolSize: 16,
			Timeout:  10 * time.Second,
		},
		Transcript: TranscriptConfig{
			Scrollback:     1000,
			MaxResultLines: 50,
		},
		Log: LogConfig{
			Level: "info",
			File:  "codemaster.log",
		},
		UI: UIConfig{
			SessionRefresh: "@every 30s",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch c.Transport.Kind {
	case chmodel.WS:
		if c.Transport.URL == "" {
			return errors.New("transport.url is required for ws transport")
		}
	case chmodel.Exec:
		if len(c.Transport.Command) == 0 {
			return errors.New("transport.command is required for exec transport")
		}
	default:
		return fmt.Errorf("unknown transport kind %q", c.Transport.Kind)
	}

	switch c.Store.Driver {
	case StoreSQLite, StoreJSONL, StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Persist.PoolSize <= 0 {
		return errors.New("persist.pool_size must be positive")
	}
	if c.Transcript.Scrollback <= 0 || c.Transcript.MaxResultLines <= 0 {
		return errors.New("transcript limits must be positive")
	}
	return nil
}

// StorePath resolves the store path against the workspace dir.
func (c Config) StorePath() string {
	return resolve(c.Store.Path)
}

// LogPath resolves the log file against the workspace dir.
func (c Config) LogPath() string {
	return resolve(c.Log.File)
}

func resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GetWorkspaceDir(), p)
}

func LoadConfig() (Config, error) {
	configPath, err := GetWorkspaceConfigPath()
	if err != nil {
		return Config{}, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom overlays the file at path on the defaults. A missing file
// yields the defaults.
func LoadConfigFrom(path string) (Config, error) {
	c := BootstrapConfig()

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		return c, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(content, &c); err != nil {
		return c, fmt.Errorf("failed to unmarshal config file: %w", err)
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return c, nil
}

// WriteConfig writes c to path as YAML, creating the directory if needed.
func WriteConfig(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, output, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
