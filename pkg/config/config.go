// Package config loads the eventable command-line configuration.
//
// Files are YAML. They are decoded into a generic map and then into Config with
// mapstructure, so scalar types are converted leniently ("3" is a valid int) and
// durations may be written as "5s".
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvRedisAddr overrides Redis.Addr when set.
const EnvRedisAddr = "EVENTABLE_REDIS_ADDR"

// Notifier drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config is the root configuration.
type Config struct {
	// Name identifies the model in event payloads.
	Name     string      `mapstructure:"name"`
	LogLevel string      `mapstructure:"log_level"`
	Notifier string      `mapstructure:"notifier"`
	Veto     bool        `mapstructure:"veto"`
	Redis    RedisConfig `mapstructure:"redis"`
	HTTP     HTTPConfig  `mapstructure:"http"`

	// ActionsFile points to a separate actions.yaml/json. Inline Actions are
	// registered after it and win on name clashes.
	ActionsFile string   `mapstructure:"actions_file"`
	Actions     []Action `mapstructure:"actions"`
}

// RedisConfig configures the Redis notifier.
type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	Prefix      string        `mapstructure:"prefix"`
	History     int           `mapstructure:"history"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	// Protocol selects RESP2 or RESP3. Zero lets the client decide.
	Protocol int `mapstructure:"protocol"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Metrics         bool          `mapstructure:"metrics"`
}

// Action declares an external command exposed as an action.
type Action struct {
	Name        string            `mapstructure:"name"`
	Command     string            `mapstructure:"command"`
	Args        []string          `mapstructure:"args"`
	Env         map[string]string `mapstructure:"env"`
	Description string            `mapstructure:"description"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Name:     "eventable",
		LogLevel: "info",
		Notifier: DriverMemory,
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			Prefix:      "eventable:events:",
			DialTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			Metrics:         true,
		},
	}
}

// Load reads path and merges it over Default. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	default:
		if cfg, err = Parse(data); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Parse decodes YAML data over Default. Environment overrides are not applied.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, err
	}
	if raw == nil {
		return cfg, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return cfg, err
	}
	if err := decoder.Decode(raw); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports configuration errors.
func (c Config) Validate() error {
	switch c.Notifier {
	case DriverMemory, DriverRedis:
	default:
		return fmt.Errorf("unknown notifier %q", c.Notifier)
	}
	if c.Notifier == DriverRedis && c.Redis.Addr == "" {
		return errors.New("redis notifier requires redis.addr")
	}
	for i, a := range c.Actions {
		if a.Name == "" || a.Command == "" {
			return fmt.Errorf("actions[%d]: name and command are required", i)
		}
	}
	return nil
}

func applyEnv(cfg *Config) {
	if addr := os.Getenv(EnvRedisAddr); addr != "" {
		cfg.Redis.Addr = addr
	}
}
