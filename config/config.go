// Package config loads riverfmt's on-disk configuration: the target
// dialect (built-in name or a custom profile snapshot merged onto a base)
// and the formatter's size/depth/width options. Mirrors the YAML config
// loading pattern used by vippsas-sqlcode's cli/cmd package and the schema
// loader in Chahine-tech-sqlens, both of which decode gopkg.in/yaml.v3 into
// a plain struct before handing it to the rest of the program.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	machparse "github.com/riverfmt/riverfmt"
	"github.com/riverfmt/riverfmt/dialect"
)

// Config is the decoded shape of a riverfmt.yaml file.
type Config struct {
	// Dialect names a builtin profile ("ansi", "postgres", "mysql", "tsql").
	// When CustomDialect is set, this profile is the base it extends.
	Dialect string `yaml:"dialect"`

	// CustomDialect, if present, is merged onto the profile named by
	// Dialect (or dialect.Default if Dialect is empty) via dialect.Custom.
	CustomDialect *dialect.Snapshot `yaml:"custom_dialect,omitempty"`

	MaxLineLength int   `yaml:"max_line_length,omitempty"`
	MaxDepth      int   `yaml:"max_depth,omitempty"`
	MaxInputSize  int   `yaml:"max_input_size,omitempty"`
	MaxTokenCount int   `yaml:"max_token_count,omitempty"`
	Recover       *bool `yaml:"recover,omitempty"`
}

// Load reads and decodes a riverfmt.yaml configuration file from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Profile resolves the configuration's dialect selection into a frozen
// *dialect.Profile: either a builtin looked up by name, or a builtin base
// extended with CustomDialect via dialect.Custom.
func (c *Config) Profile() (*dialect.Profile, error) {
	base := dialect.Default
	if c.Dialect != "" {
		p, err := dialect.Get(c.Dialect)
		if err != nil {
			return nil, err
		}
		base = p
	}
	if c.CustomDialect == nil {
		return base, nil
	}
	name := c.CustomDialect.Name
	if name == "" {
		name = base.Name() + "+custom"
	}
	return dialect.Custom(name, base, *c.CustomDialect), nil
}

// FormatOptions builds a machparse.FormatOptions from the decoded
// configuration, resolving the dialect profile along the way. Callers
// (the CLI) can still overlay their own callbacks after this returns.
func (c *Config) FormatOptions() (machparse.FormatOptions, error) {
	profile, err := c.Profile()
	if err != nil {
		return machparse.FormatOptions{}, err
	}
	return machparse.FormatOptions{
		Profile:       profile,
		MaxDepth:      c.MaxDepth,
		MaxInputSize:  c.MaxInputSize,
		MaxLineLength: c.MaxLineLength,
		MaxTokenCount: c.MaxTokenCount,
		Recover:       c.Recover,
	}, nil
}
