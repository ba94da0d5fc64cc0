// Package config loads lavue settings from an optional YAML file and the
// environment. Command-line flags are applied on top by cmd/lavue.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/lemonberrylabs/lavue/pkg/backend"
	"github.com/lemonberrylabs/lavue/pkg/parser"
	"gopkg.in/yaml.v3"
)

// MaxConfigSize is the largest config file accepted, in bytes.
const MaxConfigSize = 64 * 1024

// Environment variables read by FromEnv.
const (
	EnvConfig   = "LAVUE_CONFIG"
	EnvEmit     = "LAVUE_EMIT"
	EnvResolve  = "LAVUE_RESOLVE"
	EnvMaxDepth = "LAVUE_MAX_DEPTH"
	EnvHost     = "HOST"
	EnvPort     = "PORT"
)

// Config holds every tunable of the CLI and the HTTP service.
type Config struct {
	Emit       string         `yaml:"emit"`
	Resolve    bool           `yaml:"resolve"`
	MaxDepth   int            `yaml:"maxDepth"`
	Prompt     string         `yaml:"prompt"`
	Precedence map[string]int `yaml:"precedence"`
	Server     Server         `yaml:"server"`
}

// Server configures `lavue serve`.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Emit:     string(backend.FormatNone),
		MaxDepth: parser.DefaultMaxDepth,
		Server:   Server{Host: "0.0.0.0", Port: 8790},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML source over the defaults.
func Parse(source []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(source)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, MaxConfigSize+1))
	if err != nil {
		return err
	}
	if len(data) > MaxConfigSize {
		return fmt.Errorf("config exceeds maximum %d bytes", MaxConfigSize)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return c.Validate()
}

// FromEnv overrides fields whose environment variable is set. getenv is
// usually os.Getenv.
func (c *Config) FromEnv(getenv func(string) string) error {
	if v := getenv(EnvEmit); v != "" {
		c.Emit = v
	}
	if v := getenv(EnvResolve); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvResolve, err)
		}
		c.Resolve = b
	}
	if v := getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		c.MaxDepth = n
	}
	if v := getenv(EnvHost); v != "" {
		c.Server.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		c.Server.Port = n
	}
	return c.Validate()
}

// Validate checks field values without building anything.
func (c *Config) Validate() error {
	if _, err := backend.ParseFormat(c.Emit); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative, got %d", c.MaxDepth)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	_, err := c.PrecedenceTable()
	return err
}

// PrecedenceTable returns the default operator table with the configured
// entries applied.
func (c *Config) PrecedenceTable() (*parser.Precedence, error) {
	prec := parser.DefaultPrecedence()
	if err := prec.SetAll(c.Precedence); err != nil {
		return nil, fmt.Errorf("precedence: %w", err)
	}
	return prec, nil
}

// ParserOptions builds the parser options for this config.
func (c *Config) ParserOptions() (parser.Options, error) {
	prec, err := c.PrecedenceTable()
	if err != nil {
		return parser.Options{}, err
	}
	return parser.Options{Precedence: prec, MaxDepth: c.MaxDepth}, nil
}

// Addr returns the host:port the HTTP service listens on.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
