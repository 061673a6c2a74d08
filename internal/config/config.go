// Package config loads sqlfrag CLI settings.
//
// Precedence (highest to lowest): flags > SQLFRAG_ env vars > sqlfrag.yaml > defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/zoobzio/sqlfrag/internal/render"
)

// EnvPrefix prefixes environment overrides, e.g. SQLFRAG_DSN.
const EnvPrefix = "SQLFRAG_"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultDialect is rendered when no dialect is configured.
const DefaultDialect = "postgres"

// Config holds CLI settings.
type Config struct {
	Dialects []string `koanf:"dialects"`
	Format   string   `koanf:"format"`
	DSN      string   `koanf:"dsn"`
	Verbose  bool     `koanf:"verbose"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// flagKeys maps flag names onto config keys. Other flags are ignored.
var flagKeys = map[string]string{
	"dialect": "dialects",
	"format":  "format",
	"dsn":     "dsn",
	"verbose": "verbose",
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"sqlfrag.yaml", "sqlfrag.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load reads configuration from defaults, the config file, the environment
// and flags. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]any{
		"dialects": []string{DefaultDialect},
		"format":   FormatText,
		"dsn":      "",
		"verbose":  false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// SQLFRAG_DIALECTS -> dialects
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	cfg.Dialects = splitList(cfg.Dialects)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// splitList flattens comma-separated entries, as set through the environment.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks dialect names and the output format.
func (c *Config) Validate() error {
	if len(c.Dialects) == 0 {
		return fmt.Errorf("at least one dialect is required")
	}
	for _, d := range c.Dialects {
		if _, err := render.ParseDialect(d); err != nil {
			return err
		}
	}
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown output format: %q (want %s or %s)", c.Format, FormatText, FormatJSON)
	}
	return nil
}
