// Package config loads the YAML configuration shared by the sokoban commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pdrpinto/sokoban/internal/logging"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the root configuration document.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Search SearchConfig `yaml:"search"`
	Batch  BatchConfig  `yaml:"batch"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=auto text json"`
	Dir    string `yaml:"dir"`
}

type SearchConfig struct {
	// Workers computes successors on that many goroutines; 0 expands inline.
	Workers       int `yaml:"workers" validate:"gte=0,lte=256"`
	MaxExpansions int `yaml:"max_expansions" validate:"gte=0"`
}

type BatchConfig struct {
	Timeout   time.Duration `yaml:"timeout" validate:"gt=0"`
	Parallel  int           `yaml:"parallel" validate:"gte=1,lte=256"`
	ReportDir string        `yaml:"report_dir" validate:"required"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir" validate:"required_if=Enabled true"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
	// MaxBodyBytes bounds request bodies accepted by the HTTP API.
	MaxBodyBytes int64 `yaml:"max_body_bytes" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "auto"},
		Batch: BatchConfig{
			Timeout:   5 * time.Minute,
			Parallel:  1,
			ReportDir: "Tests",
		},
		Cache: CacheConfig{Dir: "~/.sokoban/cache"},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			MaxBodyBytes: 1 << 20,
		},
	}
}

// Load reads path and overlays it on Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Logging converts the log section into a logging.Config for service.
func (c Config) Logging(service string) (logging.Config, error) {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return logging.Config{}, err
	}
	return logging.Config{
		Level:   level,
		Format:  logging.Format(c.Log.Format),
		LogDir:  c.Log.Dir,
		Service: service,
	}, nil
}
