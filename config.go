package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Namespace   string
	Input       string
	Iterations  int
	Functions   []string
	Quiet       bool
	LogLevel    string
	Warmup      int
	Workers     int
	ClearCaches bool
	Results     string
}

// Profile holds flag defaults read from a TOML file.
type Profile struct {
	Quiet       *bool   `toml:"quiet"`
	LogLevel    *string `toml:"log_level"`
	Warmup      *int    `toml:"warmup"`
	Workers     *int    `toml:"workers"`
	ClearCaches *bool   `toml:"clear_caches"`
	Results     *string `toml:"results"`
}

func StringEnv(key string, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func IntEnv(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

// LoadEnv reads .env from the working directory if there is one.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %v: %w", path, err)
	}
	return nil
}

// ParseArgs reads the positional arguments: namespace, input, iterations, functions...
func ParseArgs(args []string) (Config, error) {
	switch {
	case len(args) < 1:
		return Config{}, fmt.Errorf("namespace must be specified")
	case len(args) < 2:
		return Config{}, fmt.Errorf("input file must be specified")
	case len(args) < 3:
		return Config{}, fmt.Errorf("number of iterations must be specified")
	case len(args) < 4:
		return Config{}, fmt.Errorf("at least one function name must be specified")
	}
	iterations, err := strconv.Atoi(args[2])
	if err != nil {
		return Config{}, fmt.Errorf("invalid number of iterations '%v': %w", args[2], err)
	}
	if iterations < 0 {
		return Config{}, fmt.Errorf("number of iterations must be non-negative, got %v", iterations)
	}
	return Config{
		Namespace:  args[0],
		Input:      args[1],
		Iterations: iterations,
		Functions:  args[3:],
	}, nil
}

func LoadProfile(path string) (*Profile, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("profile path is empty")
	}
	if filepath.Ext(path) != ".toml" {
		return nil, fmt.Errorf("profile must be a .toml file: %v", path)
	}
	var profile Profile
	meta, err := toml.DecodeFile(path, &profile)
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile %v: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in profile %v: %v", path, undecoded)
	}
	if profile.Warmup != nil && *profile.Warmup < 0 {
		return nil, fmt.Errorf("warmup must be non-negative, got %v", *profile.Warmup)
	}
	if profile.Workers != nil && *profile.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %v", *profile.Workers)
	}
	return &profile, nil
}

// Apply copies profile values into the config, skipping the fields for which
// explicit reports true.
func (p *Profile) Apply(config *Config, explicit func(field string) bool) {
	if p.Quiet != nil && !explicit("quiet") {
		config.Quiet = *p.Quiet
	}
	if p.LogLevel != nil && !explicit("log-level") {
		config.LogLevel = *p.LogLevel
	}
	if p.Warmup != nil && !explicit("warmup") {
		config.Warmup = *p.Warmup
	}
	if p.Workers != nil && !explicit("workers") {
		config.Workers = *p.Workers
	}
	if p.ClearCaches != nil && !explicit("clear-caches") {
		config.ClearCaches = *p.ClearCaches
	}
	if p.Results != nil && !explicit("results") {
		config.Results = *p.Results
	}
}
