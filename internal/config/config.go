// Package config loads dpetools settings from an optional file and the
// environment through viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/HerbHall/dpetools/internal/dpe"
)

// EnvPrefix is prepended to every environment override, e.g.
// DPETOOLS_DPE_TIMEOUT=5s.
const EnvPrefix = "DPETOOLS"

// Config is a read-only view over a *viper.Viper. A nil viper behaves like
// an empty configuration.
type Config struct {
	v *viper.Viper
}

// New wraps v.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

func (c *Config) GetString(key string) string          { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Config) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }

// Unmarshal decodes the whole configuration into target.
func (c *Config) Unmarshal(target any) error {
	return c.v.Unmarshal(target)
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	d := dpe.DefaultConfig()
	v.SetDefault("dpe.endpoint", d.EndpointURL)
	v.SetDefault("dpe.timeout", d.Timeout)
	v.SetDefault("dpe.default_limit", d.DefaultLimit)
	v.SetDefault("dpe.default_sort_field", d.DefaultSortField)
	v.SetDefault("dpe.user_agent", "")
	v.SetDefault("dpe.requests_per_second", 0)
	v.SetDefault("log.debug", false)
}

// Load reads path (if non-empty) on top of the defaults and environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}
	return New(v), nil
}

// Client returns the immutable client configuration.
func (c *Config) Client() (dpe.Config, error) {
	cfg := dpe.Config{
		EndpointURL:      c.GetString("dpe.endpoint"),
		Timeout:          c.GetDuration("dpe.timeout"),
		DefaultLimit:     c.GetInt("dpe.default_limit"),
		DefaultSortField: c.GetString("dpe.default_sort_field"),
	}
	if err := cfg.Validate(); err != nil {
		return dpe.Config{}, fmt.Errorf("invalid dpe configuration: %w", err)
	}
	return cfg, nil
}

// Transport holds the HTTP transport settings.
type Transport struct {
	UserAgent         string  `mapstructure:"user_agent"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
}

// Transport decodes the transport settings under the dpe key.
func (c *Config) Transport() (Transport, error) {
	var settings struct {
		DPE Transport `mapstructure:"dpe"`
	}
	if err := c.Unmarshal(&settings); err != nil {
		return Transport{}, fmt.Errorf("decode transport settings: %w", err)
	}
	if settings.DPE.RequestsPerSecond < 0 {
		return Transport{}, fmt.Errorf("dpe.requests_per_second must not be negative, got %v", settings.DPE.RequestsPerSecond)
	}
	return settings.DPE, nil
}

// Debug reports whether debug logging is enabled in the configuration.
func (c *Config) Debug() bool {
	return c.GetBool("log.debug")
}
