package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/meltforce/repscore/internal/scoring"
	"github.com/meltforce/repscore/internal/session"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Scoring   ScoringConfig   `yaml:"scoring"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// ScoringConfig tunes set scoring, feedback tiers and rewards. Omitted
// fields keep their defaults.
type ScoringConfig struct {
	Feedback scoring.FeedbackThresholds `yaml:"feedback"`
	Rewards  scoring.RewardConfig       `yaml:"rewards"`
	Session  session.Config             `yaml:"session"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// defaults returns a config pre-filled with everything that has a sensible default.
func defaults() *Config {
	return &Config{
		Tailscale: TailscaleConfig{Hostname: "repscore", StateDir: "tsnet-state"},
		Scoring: ScoringConfig{
			Feedback: scoring.DefaultFeedbackThresholds(),
			Rewards:  scoring.DefaultRewardConfig(),
			Session:  session.DefaultConfig(),
		},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPSCORE_ and underscore-separated paths:
//
//	REPSCORE_SERVER_HOST, REPSCORE_SERVER_PORT,
//	REPSCORE_DB_HOST, REPSCORE_DB_PORT, REPSCORE_DB_NAME,
//	REPSCORE_DB_USER, REPSCORE_DB_PASSWORD, REPSCORE_DB_SSLMODE,
//	REPSCORE_AUTH_API_KEY,
//	REPSCORE_TAILSCALE_ENABLED, REPSCORE_TAILSCALE_HOSTNAME, REPSCORE_TAILSCALE_STATE_DIR,
//	REPSCORE_REWARDS_THRESHOLD
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPSCORE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPSCORE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPSCORE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPSCORE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPSCORE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPSCORE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPSCORE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPSCORE_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPSCORE_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPSCORE_TAILSCALE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("REPSCORE_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("REPSCORE_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	if v := os.Getenv("REPSCORE_REWARDS_THRESHOLD"); v != "" {
		if th, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Scoring.Rewards.EligibilityThreshold = th
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if err := c.Scoring.Feedback.Validate(); err != nil {
		return fmt.Errorf("scoring.feedback: %w", err)
	}
	if err := c.Scoring.Rewards.Validate(); err != nil {
		return fmt.Errorf("scoring.rewards: %w", err)
	}
	if err := c.Scoring.Session.Validate(); err != nil {
		return err
	}
	return nil
}
