// Package config holds the settings shared by every facecrypt command. Values
// come from flags, FACECRYPT_* environment variables and an optional config
// file, merged by viper and checked with validator struct tags.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/andresmejia3/facecrypt/internal/face"
)

// EnvPrefix is prepended to every environment variable, e.g. FACECRYPT_PASSWORD.
const EnvPrefix = "FACECRYPT"

// DefaultMaxInputBytes bounds how much of an upload is read into memory.
const DefaultMaxInputBytes = 64 << 20

// MaxEngines is the largest accepted engines setting.
const MaxEngines = 256

// DefaultEngines is one engine per CPU, capped at MaxEngines.
func DefaultEngines() int {
	return min(runtime.NumCPU(), MaxEngines)
}

type Config struct {
	// Cascade is the path of the pigo face cascade file.
	Cascade string `mapstructure:"cascade"`
	// Output is the directory artifacts are written to.
	Output   string `mapstructure:"output" validate:"required"`
	LogLevel string `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	// Engines is the number of images processed in parallel.
	Engines       int   `mapstructure:"engines" validate:"gte=1,lte=256"`
	MaxInputBytes int64 `mapstructure:"max-input-bytes" validate:"gt=0"`
	// Password may come from FACECRYPT_PASSWORD; flags take precedence.
	Password string `mapstructure:"password"`

	Detect face.DetectOptions `mapstructure:",squash"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := face.DefaultDetectOptions()

	// Keys without a default are invisible to AutomaticEnv during Unmarshal.
	v.SetDefault("cascade", "")
	v.SetDefault("password", "")
	v.SetDefault("output", "output")
	v.SetDefault("log-level", "info")
	v.SetDefault("engines", DefaultEngines())
	v.SetDefault("max-input-bytes", DefaultMaxInputBytes)
	v.SetDefault("scale-factor", d.ScaleFactor)
	v.SetDefault("min-neighbors", d.MinNeighbors)
	v.SetDefault("min-size", d.MinSize)
	v.SetDefault("shift-factor", d.ShiftFactor)
}

// Load reads the optional config file, binds the environment and returns the
// validated configuration.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %q: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration against the struct tags and the
// detector's own constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}
	if err := c.Detect.Validate(); err != nil {
		return fmt.Errorf("validating detector settings: %w", err)
	}
	return nil
}
