// Package config loads and validates launcher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Provision ProvisionConfig `mapstructure:"provision"`
	Teardown  TeardownConfig  `mapstructure:"teardown"`
	Demo      DemoConfig      `mapstructure:"demo"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// DrainTimeoutSeconds bounds how long shutdown waits for background teardowns.
	DrainTimeoutSeconds int `mapstructure:"drain_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// ProvisionConfig locates the provisioning script.
type ProvisionConfig struct {
	Script string   `mapstructure:"script"`
	Args   []string `mapstructure:"args"`
	Dir    string   `mapstructure:"dir"`
}

// TeardownConfig locates the teardown script. It always receives the
// instance ID as its only argument.
type TeardownConfig struct {
	Script string `mapstructure:"script"`
	Dir    string `mapstructure:"dir"`
}

// DemoConfig describes the demo environment served from the instance.
type DemoConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features and log destinations.
type LoggingConfig struct {
	Development bool     `mapstructure:"development"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LAUNCHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "LAUNCHER_SERVER_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind env: %w", err)
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.drain_timeout_seconds", 30)
	v.SetDefault("provision.script", "./run_instance.sh")
	v.SetDefault("provision.args", []string{"-f"})
	v.SetDefault("teardown.script", "./kill_instance.sh")
	v.SetDefault("demo.port", 8080)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stderr"})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.DrainTimeoutSeconds < 0 {
		return fmt.Errorf("server.drain_timeout_seconds must be >= 0")
	}
	if c.Provision.Script == "" {
		return fmt.Errorf("provision.script must be set")
	}
	if c.Teardown.Script == "" {
		return fmt.Errorf("teardown.script must be set")
	}
	if c.Demo.Port <= 0 || c.Demo.Port > 65535 {
		return fmt.Errorf("demo.port must be between 1 and 65535")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	return nil
}

// DrainTimeout converts the drain budget into a duration.
func (c Config) DrainTimeout() time.Duration {
	return time.Duration(c.Server.DrainTimeoutSeconds) * time.Second
}
