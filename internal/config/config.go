// Package config loads callsearch settings and resolves its filesystem paths.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultArtifactURL is the public site that serves call artifacts.
const DefaultArtifactURL = "https://forkcast.org"

// Config holds user settings. Zero durations fall back to defaults.
type Config struct {
	// Home is the state directory. It is not stored in the file.
	Home string `yaml:"-"`

	ArtifactURL string `yaml:"artifact_url"`
	ArtifactDir string `yaml:"artifact_dir,omitempty"`
	// RateLimit is the maximum number of artifact requests per second.
	RateLimit float64 `yaml:"rate_limit"`

	Search SearchConfig `yaml:"search"`
	Sync   SyncConfig   `yaml:"sync"`
}

// SearchConfig tunes the interactive search session.
type SearchConfig struct {
	Debounce      time.Duration `yaml:"debounce"`
	ContextRadius int           `yaml:"context_radius"`
}

// SyncConfig tunes video-driven highlighting and seeking.
type SyncConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	ScrollCooldown   time.Duration `yaml:"scroll_cooldown"`
	SeekThreshold    time.Duration `yaml:"seek_threshold"`
	InitialSeekDelay time.Duration `yaml:"initial_seek_delay"`
	SeekRetryDelay   time.Duration `yaml:"seek_retry_delay"`
	SettleDelay      time.Duration `yaml:"settle_delay"`
}

// DefaultHome returns ~/.callsearch, or $CALLSEARCH_HOME when set.
func DefaultHome() string {
	if home := os.Getenv("CALLSEARCH_HOME"); home != "" {
		return home
	}
	return filepath.Join(os.Getenv("HOME"), ".callsearch")
}

// DefaultPath returns the config file location inside DefaultHome.
func DefaultPath() string {
	return filepath.Join(DefaultHome(), "config.yaml")
}

// Default returns a Config rooted at DefaultHome.
func Default() Config {
	return Config{
		Home:        DefaultHome(),
		ArtifactURL: DefaultArtifactURL,
		RateLimit:   10,
		Search: SearchConfig{
			Debounce:      150 * time.Millisecond,
			ContextRadius: 2,
		},
		Sync: SyncConfig{
			PollInterval:     100 * time.Millisecond,
			ScrollCooldown:   3 * time.Second,
			SeekThreshold:    2 * time.Second,
			InitialSeekDelay: 500 * time.Millisecond,
			SeekRetryDelay:   1 * time.Second,
			SettleDelay:      300 * time.Millisecond,
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the directory if needed.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("CALLSEARCH_ARTIFACT_URL"); url != "" {
		c.ArtifactURL = url
	}
	if dir := os.Getenv("CALLSEARCH_ARTIFACT_DIR"); dir != "" {
		c.ArtifactDir = dir
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.Home == "" {
		c.Home = d.Home
	}
	if c.ArtifactURL == "" {
		c.ArtifactURL = d.ArtifactURL
	}
	if c.RateLimit == 0 {
		c.RateLimit = d.RateLimit
	}

	durations := []struct {
		got *time.Duration
		def time.Duration
	}{
		{&c.Search.Debounce, d.Search.Debounce},
		{&c.Sync.PollInterval, d.Sync.PollInterval},
		{&c.Sync.ScrollCooldown, d.Sync.ScrollCooldown},
		{&c.Sync.SeekThreshold, d.Sync.SeekThreshold},
		{&c.Sync.InitialSeekDelay, d.Sync.InitialSeekDelay},
		{&c.Sync.SeekRetryDelay, d.Sync.SeekRetryDelay},
		{&c.Sync.SettleDelay, d.Sync.SettleDelay},
	}
	for _, f := range durations {
		if *f.got == 0 {
			*f.got = f.def
		}
	}
}

// Validate rejects settings that would stall the UI or the poll loop.
func (c Config) Validate() error {
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative, got %v", c.RateLimit)
	}
	if c.Search.ContextRadius < 0 {
		return fmt.Errorf("search.context_radius must not be negative, got %d", c.Search.ContextRadius)
	}
	if c.Sync.PollInterval < 10*time.Millisecond {
		return fmt.Errorf("sync.poll_interval must be at least 10ms, got %s", c.Sync.PollInterval)
	}
	for name, d := range map[string]time.Duration{
		"search.debounce":         c.Search.Debounce,
		"sync.scroll_cooldown":    c.Sync.ScrollCooldown,
		"sync.seek_threshold":     c.Sync.SeekThreshold,
		"sync.initial_seek_delay": c.Sync.InitialSeekDelay,
		"sync.seek_retry_delay":   c.Sync.SeekRetryDelay,
		"sync.settle_delay":       c.Sync.SettleDelay,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	return nil
}

// DBPath returns the DuckDB cache file path.
func (c Config) DBPath() string {
	return filepath.Join(c.Home, "calls.duckdb")
}

// MirrorDir returns the directory artifacts are read from: ArtifactDir when
// set, otherwise the mirror inside Home.
func (c Config) MirrorDir() string {
	if c.ArtifactDir != "" {
		return c.ArtifactDir
	}
	return filepath.Join(c.Home, "artifacts")
}
