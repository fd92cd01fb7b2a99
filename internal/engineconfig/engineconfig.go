// Package engineconfig loads the codecrund daemon's configuration from
// file, environment, and defaults using Viper, following the teacher's
// internal/config.Load/SetDefaults pattern.
package engineconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level configuration for the codecrund daemon.
type Config struct {
	Server          ServerConfig          `mapstructure:"server"`
	ResourceManager ResourceManagerConfig `mapstructure:"resource_manager"`
	Worker          WorkerConfig          `mapstructure:"worker"`
	Logging         LoggingConfig         `mapstructure:"logging"`
	Audit           AuditConfig           `mapstructure:"audit"`
}

// WorkerConfig bounds process-wide codec worker concurrency.
type WorkerConfig struct {
	MaxConcurrent int64 `mapstructure:"max_concurrent"`
}

// ServerConfig holds the gRPC and admin HTTP listener settings.
type ServerConfig struct {
	GRPCAddress   string        `mapstructure:"grpc_address"`
	AdminAddress  string        `mapstructure:"admin_address"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`
}

// ResourceManagerConfig configures the inactivity reclamation sweep.
type ResourceManagerConfig struct {
	SweepCron           string        `mapstructure:"sweep_cron"`
	InactivityThreshold time.Duration `mapstructure:"inactivity_threshold"`
	ExemptEncoders      bool          `mapstructure:"exempt_encoders"`
	MemoryPressureAware bool          `mapstructure:"memory_pressure_aware"`
}

// LoggingConfig mirrors the teacher's logging config shape.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuditConfig configures the optional reclamation audit log.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Validate checks cross-field invariants that mapstructure tags alone
// can't express.
func (c *Config) Validate() error {
	if c.ResourceManager.InactivityThreshold <= 0 {
		return errors.New("resource_manager.inactivity_threshold must be positive")
	}
	if c.Worker.MaxConcurrent <= 0 {
		return errors.New("worker.max_concurrent must be positive")
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		return errors.New("audit.path is required when audit.enabled is true")
	}
	return nil
}

// Load reads configuration from configPath (or the default search path
// when empty), environment variables prefixed CODECRUN_, and defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/codecrun")
		v.AddConfigPath("$HOME/.codecrun")
	}

	v.SetEnvPrefix("CODECRUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults configures default values for every configuration option.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_address", "0.0.0.0:9090")
	v.SetDefault("server.admin_address", "0.0.0.0:9091")
	v.SetDefault("server.shutdown_grace", 10*time.Second)

	v.SetDefault("resource_manager.sweep_cron", "*/5 * * * *")
	v.SetDefault("resource_manager.inactivity_threshold", 5*time.Minute)
	v.SetDefault("resource_manager.exempt_encoders", false)
	v.SetDefault("resource_manager.memory_pressure_aware", true)

	v.SetDefault("worker.max_concurrent", 256)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.path", "codecrun-audit.db")
}
