package config

import (
	"errors"
	"fmt"
	"github.com/pelletier/go-toml/v2"
	"github.com/saylorsolutions/eventcast/assert"
	"github.com/saylorsolutions/eventcast/env"
	"gopkg.in/yaml.v3"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// EnvPrefix is the prefix of environment variables read by [FromEnv].
const EnvPrefix = "EVENTCAST"

var (
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnsupportedFormat = errors.New("unsupported configuration format")
)

// Config holds the settings of an event context.
type Config struct {
	Name      string `yaml:"name" toml:"name"`             // Name identifies the context in logs.
	Caching   bool   `yaml:"caching" toml:"caching"`       // Caching enables caching of matched listeners.
	Isolation bool   `yaml:"isolation" toml:"isolation"`   // Isolation keeps delivering events after a listener panics.
	LogLevel  string `yaml:"log_level" toml:"log_level"`   // LogLevel is one of debug, info, warn, or error.
	LogFormat string `yaml:"log_format" toml:"log_format"` // LogFormat is either text or json.
}

func Default() Config {
	return Config{
		Name:      "eventcast",
		Caching:   true,
		LogLevel:  "info",
		LogFormat: FormatText,
	}
}

// Load reads a YAML or TOML file, chosen by its extension.
// Settings that aren't in the file keep their [Default] values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var format string
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		format = "yaml"
	case ".toml":
		format = "toml"
	default:
		return Config{}, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, ext)
	}
	return Parse(data, format)
}

// Parse reads configuration in the given format, which is either "yaml" or "toml".
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overrides base with any EVENTCAST_* environment variables that are set.
func FromEnv(base Config) Config {
	return FromSource(base, env.Prefixed(EnvPrefix))
}

// FromSource overrides base with any variables set in src.
func FromSource(base Config, src env.Source) Config {
	base.Name = src.Val("NAME", base.Name)
	base.Caching = src.Bool("CACHING", base.Caching)
	base.Isolation = src.Bool("ISOLATION", base.Isolation)
	base.LogLevel = src.Val("LOG_LEVEL", base.LogLevel)
	base.LogFormat = src.Val("LOG_FORMAT", base.LogFormat)
	return base
}

// Validate reports every problem with the configuration in one error.
func (c Config) Validate() error {
	var level slog.Level
	errs := assert.CollectErrors("; ")
	errs.Check(len(strings.TrimSpace(c.Name)) > 0, "%w: name is required", ErrInvalidConfig)
	errs.Check(level.UnmarshalText([]byte(c.LogLevel)) == nil, "%w: unknown log level '%s'", ErrInvalidConfig, c.LogLevel)
	errs.Check(c.LogFormat == FormatText || c.LogFormat == FormatJSON, "%w: unknown log format '%s'", ErrInvalidConfig, c.LogFormat)
	return errs.Result()
}

// Level returns the configured log level, or [slog.LevelInfo] if it's not valid.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger creates a logger that writes to w with the configured level and format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	var handler slog.Handler
	if c.LogFormat == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("context", c.Name)
}
