package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	OTP       OTPConfig       `mapstructure:"otp"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Env             string `mapstructure:"env"`
	Port            int    `mapstructure:"port"`
	ShutdownSeconds int    `mapstructure:"shutdown_seconds"`
	CORSOrigins     string `mapstructure:"cors_origins"`
}

// DatabaseConfig covers both local TCP and Cloud SQL unix socket connections
type DatabaseConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	Name                   string `mapstructure:"name"`
	SSLMode                string `mapstructure:"sslmode"`
	InstanceConnectionName string `mapstructure:"instance_connection_name"`
}

type StorageConfig struct {
	// Memory selects the in-memory store. Not for production.
	Memory bool `mapstructure:"memory"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	Issuer     string `mapstructure:"issuer"`
}

type TwilioConfig struct {
	AccountSID       string `mapstructure:"account_sid"`
	AuthToken        string `mapstructure:"auth_token"`
	From             string `mapstructure:"from"`
	ValidateWebhooks bool   `mapstructure:"validate_webhooks"`
}

type OTPConfig struct {
	TTLMinutes     int `mapstructure:"ttl_minutes"`
	MaxAttempts    int `mapstructure:"max_attempts"`
	SendsPerHour   int `mapstructure:"sends_per_hour"`
	RetentionHours int `mapstructure:"retention_hours"`

	// CleanupSchedule is a cron spec for purging expired codes
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_seconds", 15)
	v.SetDefault("app.cors_origins", "*")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "hanapp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.instance_connection_name", "")

	v.SetDefault("storage.memory", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "hanapp.events")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl_minutes", 60*24)
	v.SetDefault("jwt.issuer", "hanapp-ph")

	v.SetDefault("twilio.account_sid", "")
	v.SetDefault("twilio.auth_token", "")
	v.SetDefault("twilio.from", "")
	v.SetDefault("twilio.validate_webhooks", true)

	v.SetDefault("otp.ttl_minutes", 5)
	v.SetDefault("otp.max_attempts", 5)
	v.SetDefault("otp.sends_per_hour", 5)
	v.SetDefault("otp.retention_hours", 24)
	v.SetDefault("otp.cleanup_schedule", "@every 15m")

	v.SetDefault("rate_limit.per_minute", 120)
}

// Load reads .env (local development), an optional config file and the
// environment. Environment variables win: DATABASE_HOST overrides database.host.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// comma separated brokers from the environment arrive as one element
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with
func (c *Config) Validate() error {
	if c.App.Port <= 0 {
		return errors.New("app.port missing or invalid")
	}
	if c.JWT.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("jwt.secret is required outside development")
		}
		c.JWT.Secret = "dev-insecure-secret"
	}
	if c.JWT.TTLMinutes <= 0 {
		return errors.New("jwt.ttl_minutes must be positive")
	}
	if c.OTP.TTLMinutes <= 0 || c.OTP.MaxAttempts <= 0 {
		return errors.New("otp.ttl_minutes and otp.max_attempts must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownSeconds) * time.Second
}

func (c *Config) TwilioConfigured() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" && c.Twilio.From != ""
}
