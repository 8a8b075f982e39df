package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type LoggingCfg struct {
	File         string `yaml:"file" json:"file"`                   // Operational log file (empty = no file)
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type MetricsCfg struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"` // node_exporter textfile output (empty = disabled)
}

type ResourceLimits struct {
	MaxCPUPercent        float64 `yaml:"max_cpu_percent" json:"max_cpu_percent"`                 // Maximum CPU usage (0 = unlimited)
	MaxRemovalsPerSecond float64 `yaml:"max_removals_per_second" json:"max_removals_per_second"` // Removal rate cap (0 = unlimited)
}

type Config struct {
	DatabasePath   string         `yaml:"database_path" json:"database_path"`     // SQLite removal history (empty = disabled)
	ProtectedPaths []string       `yaml:"protected_paths" json:"protected_paths"` // Never removed, even when matching
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	Metrics        MetricsCfg     `yaml:"metrics" json:"metrics"`
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
}

var (
	errInvalidPath      = errors.New("path must be absolute")
	errNegativeRotation = errors.New("logging.rotation_days cannot be negative")
	errNegativeCPU      = errors.New("resource_limits.max_cpu_percent cannot be negative")
	errNegativeRate     = errors.New("resource_limits.max_removals_per_second cannot be negative")
)

// Default returns the configuration used when no config file is given.
// Every optional subsystem is disabled.
func Default() *Config {
	cfg := &Config{}
	_ = cfg.validateAndDefault()
	return cfg
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	cfg := &Config{}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		// An empty file is a valid, all-defaults config
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) validateAndDefault() error {
	if c.Logging.RotationDays < 0 {
		return errNegativeRotation
	}
	if c.Logging.RotationDays == 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.MaxCPUPercent < 0 {
		return errNegativeCPU
	}
	if c.ResourceLimits.MaxRemovalsPerSecond < 0 {
		return errNegativeRate
	}

	var err error
	if c.DatabasePath, err = cleanOptionalAbsolute(c.DatabasePath); err != nil {
		return fmt.Errorf("database_path: %w", err)
	}
	if c.Logging.File, err = cleanOptionalAbsolute(c.Logging.File); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	if c.Metrics.TextfilePath, err = cleanOptionalAbsolute(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}

	cleaned := make([]string, 0, len(c.ProtectedPaths))
	for _, p := range c.ProtectedPaths {
		if p == "" {
			continue
		}
		cp, err := cleanAbsolute(p)
		if err != nil {
			return fmt.Errorf("protected_paths: %w", err)
		}
		cleaned = append(cleaned, cp)
	}
	c.ProtectedPaths = cleaned

	return nil
}

func cleanOptionalAbsolute(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	return cleanAbsolute(p)
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errInvalidPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// ThrottleEnabled reports whether the CPU limiter should run.
func (c *Config) ThrottleEnabled() bool {
	return c.ResourceLimits.MaxCPUPercent > 0 && c.ResourceLimits.MaxCPUPercent < 100
}
