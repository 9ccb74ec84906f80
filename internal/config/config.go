// Package config loads props.toml, the per-project defaults of the props tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/bishiboosh/properties-serializer/internal/trace"
)

// FileName is the name looked up by Find.
const FileName = "props.toml"

// Config mirrors props.toml.
type Config struct {
	Output OutputConfig `toml:"output"`
	Check  CheckConfig  `toml:"check"`
	Trace  TraceConfig  `toml:"trace"`
	Cache  CacheConfig  `toml:"cache"`
}

type OutputConfig struct {
	Color  string `toml:"color"`  // auto|on|off
	Format string `toml:"format"` // pretty|props|json
}

type CheckConfig struct {
	Jobs int `toml:"jobs"` // 0 means GOMAXPROCS
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Mode   string `toml:"mode"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Default returns the configuration used when no props.toml exists.
func Default() Config {
	return Config{
		Output: OutputConfig{Color: "auto", Format: "pretty"},
		Trace:  TraceConfig{Level: "off", Output: "-", Mode: "stream"},
	}
}

// File is a loaded props.toml.
type File struct {
	Path   string
	Root   string
	Config Config
}

// Find walks up from startDir to the nearest props.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest props.toml above startDir, or the defaults when
// there is none.
func Discover(startDir string) (*File, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &File{Config: Default()}, nil
	}
	return Load(path)
}

// Load reads and validates path. Keys absent from the file keep their
// default values.
func Load(path string) (*File, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := validate(meta, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if meta.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), cfg.Cache.Dir)
	}
	return &File{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

func validate(meta toml.MetaData, cfg *Config) error {
	if meta.IsDefined("output", "color") {
		switch strings.ToLower(cfg.Output.Color) {
		case "auto", "on", "off":
		default:
			return fmt.Errorf("[output].color must be auto, on or off, got %q", cfg.Output.Color)
		}
	}
	if meta.IsDefined("output", "format") {
		switch cfg.Output.Format {
		case "pretty", "props", "json":
		default:
			return fmt.Errorf("[output].format must be pretty, props or json, got %q", cfg.Output.Format)
		}
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 0 {
		return fmt.Errorf("[check].jobs must not be negative, got %d", cfg.Check.Jobs)
	}
	if meta.IsDefined("trace", "level") {
		if _, err := trace.ParseLevel(cfg.Trace.Level); err != nil {
			return fmt.Errorf("[trace].level: %w", err)
		}
	}
	if meta.IsDefined("trace", "mode") {
		if _, err := trace.ParseMode(cfg.Trace.Mode); err != nil {
			return fmt.Errorf("[trace].mode: %w", err)
		}
	}
	return nil
}
