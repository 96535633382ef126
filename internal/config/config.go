// Package config loads castr.yaml.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/castr-dev/castr/internal/parser/route"
	"github.com/castr-dev/castr/internal/registry"
	"github.com/castr-dev/castr/internal/schema"
)

// FileName is the config file looked up in the working directory.
const FileName = "castr"

// EnvPrefix prefixes environment overrides: CASTR_OUTPUT_DIR overrides
// output.dir.
const EnvPrefix = "CASTR"

// Config is the castr configuration.
type Config struct {
	Inputs   []string     `mapstructure:"inputs"`
	Excludes []string     `mapstructure:"excludes"`
	Output   OutputConfig `mapstructure:"output"`
	Build    BuildConfig  `mapstructure:"build"`
	Debug    bool         `mapstructure:"debug"`
}

// OutputConfig selects what is written and where.
type OutputConfig struct {
	Dir           string   `mapstructure:"dir"`
	Types         []string `mapstructure:"types"`
	PackageName   string   `mapstructure:"package_name"`
	GeneratedTime bool     `mapstructure:"generated_time"`
}

// BuildConfig controls the IR build and the writers.
type BuildConfig struct {
	TargetVersion       string `mapstructure:"target_version"`
	Strict              bool   `mapstructure:"strict"`
	Validate            bool   `mapstructure:"validate"`
	MaxDepth            int    `mapstructure:"max_depth"`
	DefaultStatus       string `mapstructure:"default_status"`
	MergeMalformedAllOf bool   `mapstructure:"merge_malformed_allof"`
	ComplexityThreshold int    `mapstructure:"complexity_threshold"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("inputs", []string{})
	v.SetDefault("excludes", []string{})
	v.SetDefault("output.dir", "./docs")
	v.SetDefault("output.types", []string{"json", "yaml"})
	v.SetDefault("output.package_name", "")
	v.SetDefault("output.generated_time", false)
	v.SetDefault("build.target_version", "")
	v.SetDefault("build.strict", false)
	v.SetDefault("build.validate", true)
	v.SetDefault("build.max_depth", schema.DefaultMaxDepth)
	v.SetDefault("build.default_status", string(route.DefaultStatusSpecCompliant))
	v.SetDefault("build.merge_malformed_allof", true)
	v.SetDefault("build.complexity_threshold", registry.AlwaysInline)
	v.SetDefault("debug", false)
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the config file at path, or castr.yaml in the working directory
// when path is empty. A missing castr.yaml is not an error; a missing
// explicit path is.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values the builder would otherwise reject later.
func (c *Config) Validate() error {
	if _, err := route.ParseDefaultStatusBehavior(c.Build.DefaultStatus); err != nil {
		return fmt.Errorf("build.default_status: %w", err)
	}
	if c.Build.MaxDepth <= 0 {
		return fmt.Errorf("build.max_depth must be positive, got %d", c.Build.MaxDepth)
	}
	if c.Build.ComplexityThreshold < registry.AlwaysInline {
		return fmt.Errorf("build.complexity_threshold must be %d or more, got %d", registry.AlwaysInline, c.Build.ComplexityThreshold)
	}
	switch {
	case c.Build.TargetVersion == "",
		strings.HasPrefix(c.Build.TargetVersion, "3.0."),
		strings.HasPrefix(c.Build.TargetVersion, "3.1."):
	default:
		return fmt.Errorf("build.target_version must be a 3.0.x or 3.1.x version, got %q", c.Build.TargetVersion)
	}
	return nil
}
