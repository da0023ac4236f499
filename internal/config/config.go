package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBinary        = "magick"
	DefaultMaxEdge       = 1000
	DefaultJPEGQuality   = 75
	DefaultPaletteColors = 255
	DefaultMinSavings    = 100
)

// Config describes the tool level configuration loaded from json or yaml.
type Config struct {
	Converter  ConverterConfig `json:"converter" yaml:"converter"`
	MinSavings int64           `json:"min_savings" yaml:"min_savings"`
}

// ConverterConfig holds the options for invoking the external image converter.
type ConverterConfig struct {
	Binary         string   `json:"binary" yaml:"binary"`
	MaxEdge        int      `json:"max_edge" yaml:"max_edge"`
	JPEGQuality    int      `json:"jpeg_quality" yaml:"jpeg_quality"`
	PaletteColors  int      `json:"palette_colors" yaml:"palette_colors"`
	ConvertTimeout Duration `json:"convert_timeout" yaml:"convert_timeout"`
}

// Duration is a time.Duration decoded from strings like "30s".
type Duration time.Duration

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Converter: ConverterConfig{
			Binary:        DefaultBinary,
			MaxEdge:       DefaultMaxEdge,
			JPEGQuality:   DefaultJPEGQuality,
			PaletteColors: DefaultPaletteColors,
		},
		MinSavings: DefaultMinSavings,
	}
}

// LoadFirst tries to load configuration from the given paths, returning the
// first successfully decoded configuration. Paths that do not exist are
// skipped; when none exists the defaults are returned.
func LoadFirst(paths ...string) (*Config, error) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		cfg, err := Load(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return Default(), nil
}

// Load reads configuration from a single file. Files ending in .yaml or .yml
// are decoded as yaml, everything else as json. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate performs basic validation of the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Converter.Binary) == "" {
		return errors.New("config.converter.binary must be set")
	}
	if c.Converter.MaxEdge <= 0 {
		return errors.New("config.converter.max_edge must be positive")
	}
	if c.Converter.JPEGQuality <= 0 || c.Converter.JPEGQuality > 100 {
		return errors.New("config.converter.jpeg_quality must be within 1..100")
	}
	if c.Converter.PaletteColors <= 0 {
		return errors.New("config.converter.palette_colors must be positive")
	}
	if c.Converter.ConvertTimeout < 0 {
		return errors.New("config.converter.convert_timeout must not be negative")
	}
	if c.MinSavings < 0 {
		return errors.New("config.min_savings must not be negative")
	}
	return nil
}

var current *Config

// SetDefault assigns the configuration used by the commands.
func SetDefault(c *Config) {
	current = c
}

// Current returns the configured instance, or the defaults when none was set.
func Current() *Config {
	if current == nil {
		return Default()
	}
	return current
}
