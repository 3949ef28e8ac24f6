package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration. Values come from defaults,
// then an optional YAML file, then environment variables, in that order.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`
	DatabasePath string `yaml:"database_path"`

	JWT      JWTConfig      `yaml:"jwt"`
	Redis    RedisConfig    `yaml:"redis"`
	Discord  DiscordConfig  `yaml:"discord"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	Realtime RealtimeConfig `yaml:"realtime"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	TTL      time.Duration `yaml:"ttl"`
}

type RedisConfig struct {
	// Addr enables the Redis-backed chat history when non-empty.
	Addr string `yaml:"addr"`
}

type DiscordConfig struct {
	// WebhookURL enables Discord notifications when non-empty.
	WebhookURL string `yaml:"webhook_url"`
}

type SMTPConfig struct {
	// Host enables email delivery when non-empty.
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type RealtimeConfig struct {
	// TournamentPushInterval is how often the active-tournament count is
	// broadcast to all connections.
	TournamentPushInterval time.Duration `yaml:"tournament_push_interval"`
	// StatsPushInterval is how often system stats are sent to the admin room.
	StatsPushInterval time.Duration `yaml:"stats_push_interval"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:   ":8008",
		DatabasePath: "clutchzone.db",
		JWT: JWTConfig{
			Secret:   "development-insecure-secret-change-me",
			Issuer:   "clutchzone-api",
			Audience: "clutchzone-clients",
			TTL:      24 * time.Hour,
		},
		SMTP: SMTPConfig{
			Port: 587,
			From: "noreply@clutchzone.gg",
		},
		Realtime: RealtimeConfig{
			TournamentPushInterval: 30 * time.Second,
			StatsPushInterval:      10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty and the file exists), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.ListenAddr, "LISTEN_ADDR")
	setString(&c.DatabasePath, "DATABASE_PATH")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.JWT.Issuer, "JWT_ISSUER")
	setString(&c.JWT.Audience, "JWT_AUDIENCE")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Discord.WebhookURL, "DISCORD_WEBHOOK_URL")
	setString(&c.SMTP.Host, "SMTP_HOST")
	setInt(&c.SMTP.Port, "SMTP_PORT")
	setString(&c.SMTP.User, "SMTP_USER")
	setString(&c.SMTP.Password, "SMTP_KEY")
	setString(&c.SMTP.From, "SMTP_FROM")
}

func (c *Config) validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive")
	}
	if c.Realtime.TournamentPushInterval <= 0 || c.Realtime.StatsPushInterval <= 0 {
		return fmt.Errorf("realtime push intervals must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
