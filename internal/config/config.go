package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/projectmatch/internal/matcher"
)

// Config holds application configuration.
type Config struct {
	Database  DatabaseConfig
	Matching  MatchingConfig
	Reconcile ReconcileConfig
	Mappings  MappingsConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// MatchingConfig holds fuzzy matching settings.
type MatchingConfig struct {
	Threshold float64
}

// ReconcileConfig controls how proposals are written back.
type ReconcileConfig struct {
	DryRun     bool          `mapstructure:"dry_run"`
	BatchSize  int           `mapstructure:"batch_size"`
	BatchDelay time.Duration `mapstructure:"batch_delay"`
	SampleSize int           `mapstructure:"sample_size"`
}

// MappingsConfig points at the optional JSON mappings file.
type MappingsConfig struct {
	Path string
}

func newViper() *viper.Viper {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "projectmatch", "projectmatch.db"))
	v.SetDefault("matching.threshold", matcher.DefaultThreshold)
	v.SetDefault("reconcile.dry_run", true)
	v.SetDefault("reconcile.batch_size", 10)
	v.SetDefault("reconcile.batch_delay", "1s")
	v.SetDefault("reconcile.sample_size", 5)
	v.SetDefault("mappings.path", "")

	v.SetConfigType("toml")
	v.SetEnvPrefix("PROJECTMATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// Load reads configuration from file and env. Env var overrides use prefix
// PROJECTMATCH_, e.g. PROJECTMATCH_MATCHING_THRESHOLD=0.7.
func Load() (Config, error) {
	v := newViper()

	cfgPath := os.Getenv("PROJECTMATCH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "projectmatch"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings that would make a run meaningless.
func (c Config) Validate() error {
	if err := matcher.ValidateThreshold(c.Matching.Threshold); err != nil {
		return fmt.Errorf("matching.threshold: %w", err)
	}
	if c.Reconcile.BatchSize < 1 {
		return fmt.Errorf("reconcile.batch_size must be at least 1, got %d", c.Reconcile.BatchSize)
	}
	if c.Reconcile.BatchDelay < 0 {
		return fmt.Errorf("reconcile.batch_delay must not be negative, got %s", c.Reconcile.BatchDelay)
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	return nil
}

// Save writes the provided config to disk, creating the config directory if needed.
func Save(cfg Config) error {
	path := os.Getenv("PROJECTMATCH_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "projectmatch", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("matching.threshold", cfg.Matching.Threshold)
	v.Set("reconcile.dry_run", cfg.Reconcile.DryRun)
	v.Set("reconcile.batch_size", cfg.Reconcile.BatchSize)
	v.Set("reconcile.batch_delay", cfg.Reconcile.BatchDelay.String())
	v.Set("reconcile.sample_size", cfg.Reconcile.SampleSize)
	v.Set("mappings.path", cfg.Mappings.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
