package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "DBO2TAXER_"

// EnvConfigPath names an explicit config file when no path is passed on
// the command line.
const EnvConfigPath = EnvPrefix + "CONFIG"

// appName is the directory under the user config dir.
const appName = "dbo2taxer"

// fileExtensions are tried in order when looking for the default file.
var fileExtensions = []string{".toml", ".yaml", ".yml", ".json"}

// Error is a configuration failure. Source names the layer that failed.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// A Provider returns one configuration layer. Empty fields leave the
// value of earlier layers untouched.
type Provider func() (Config, error)

// Load folds providers left to right, later layers overriding earlier
// ones field by field, then normalizes and validates the result.
func Load(providers ...Provider) (Config, error) {
	var cfg Config
	for _, p := range providers {
		patch, err := p()
		if err != nil {
			return Config{}, err
		}
		if err := mergo.Merge(&cfg, patch, mergo.WithOverride); err != nil {
			return Config{}, &Error{Source: "merge", Err: err}
		}
	}
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, &Error{Source: "validation", Err: err}
	}
	return cfg, nil
}

// Sources describes where a full configuration is assembled from.
type Sources struct {
	// Path is an explicit config file. It must exist.
	Path string
	// Dir is searched for config.{toml,yaml,yml,json} when Path is empty.
	// Empty means the platform user config directory.
	Dir string
	// Environ holds environment variables; nil means the process environment.
	Environ map[string]string
}

// Providers returns the standard layer order: defaults, then a config
// file, then environment variables.
func (s Sources) Providers() []Provider {
	environ := s.Environ
	if environ == nil {
		environ = processEnviron()
	}

	path := s.Path
	if path == "" {
		path = environ[EnvConfigPath]
	}

	file := DefaultFile(s.Dir)
	if path != "" {
		file = File(path, true)
	}

	return []Provider{Defaults(), file, Env(EnvPrefix, environ)}
}

// Resolve loads the configuration described by s.
func Resolve(s Sources) (Config, error) {
	return Load(s.Providers()...)
}

// Defaults provides the built-in configuration.
func Defaults() Provider {
	return func() (Config, error) {
		return Default(), nil
	}
}

// File reads a config file, choosing the format by extension. A missing
// file is an error only when required.
func File(path string, required bool) Provider {
	return func() (Config, error) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) && !required {
			return Config{}, nil
		}
		if err != nil {
			return Config{}, &Error{Source: path, Err: fmt.Errorf("reading config: %w", err)}
		}
		cfg, err := parseFile(path, data)
		if err != nil {
			return Config{}, &Error{Source: path, Err: err}
		}
		return cfg, nil
	}
}

// DefaultFile reads the first config.<ext> found in dir, or in the user
// config directory when dir is empty. Having no file is not an error.
func DefaultFile(dir string) Provider {
	return func() (Config, error) {
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				// No home directory: nothing to read.
				return Config{}, nil
			}
			dir = filepath.Join(base, appName)
		}
		for _, ext := range fileExtensions {
			path := filepath.Join(dir, "config"+ext)
			if _, err := os.Stat(path); err == nil {
				return File(path, true)()
			}
		}
		return Config{}, nil
	}
}

// Env reads prefixed variables from environ.
func Env(prefix string, environ map[string]string) Provider {
	return func() (Config, error) {
		var cfg Config
		err := env.Parse(&cfg, env.Options{Prefix: prefix, Environment: environ})
		if err != nil {
			return Config{}, &Error{Source: "environment", Err: err}
		}
		return cfg, nil
	}
}

func parseFile(path string, data []byte) (Config, error) {
	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("parsing config: unknown key %q", undecoded[0].String())
		}
	case ".yaml", ".yml", ".json", "":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config format %q", ext)
	}
	return cfg, nil
}

func processEnviron() map[string]string {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			environ[k] = v
		}
	}
	return environ
}
