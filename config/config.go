// Package config loads application settings from .env, the environment and an optional config.yml.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TIME_ZONE must resolve in minimal containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`

	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
	AdminEmails        string `mapstructure:"ADMIN_EMAILS"`

	RedisURL string `mapstructure:"REDIS_URL"`

	SMTPHost         string `mapstructure:"SMTP_HOST"`
	SMTPPort         int    `mapstructure:"SMTP_PORT"`
	SMTPUsername     string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword     string `mapstructure:"SMTP_PASSWORD"`
	DefaultFromEmail string `mapstructure:"DEFAULT_FROM_EMAIL"`
	SiteDomain       string `mapstructure:"SITE_DOMAIN"`

	NotifyDedupeSubscribers bool `mapstructure:"NOTIFY_DEDUPE_SUBSCRIBERS"`

	TimeZone           string `mapstructure:"TIME_ZONE"`
	NewsletterSchedule string `mapstructure:"NEWSLETTER_SCHEDULE"`
	HeartbeatSchedule  string `mapstructure:"HEARTBEAT_SCHEDULE"`
	CleanupSchedule    string `mapstructure:"CLEANUP_SCHEDULE"`
	JobRetentionHours  int    `mapstructure:"JOB_RETENTION_HOURS"`
}

const defaultJWTSecret = "your-secret-key-change-this-in-production"

var defaults = map[string]interface{}{
	"APP_ENV":                   "development",
	"PORT":                      "8080",
	"LOG_LEVEL":                 "info",
	"DB_HOST":                   "localhost",
	"DB_PORT":                   "5432",
	"DB_USER":                   "myuser",
	"DB_PASSWORD":               "mypassword",
	"DB_NAME":                   "newspaper",
	"DB_SSLMODE":                "disable",
	"JWT_SECRET":                defaultJWTSecret,
	"JWT_EXPIRATION_HOURS":      24,
	"ADMIN_EMAILS":              "",
	"REDIS_URL":                 "",
	"SMTP_HOST":                 "",
	"SMTP_PORT":                 587,
	"SMTP_USERNAME":             "",
	"SMTP_PASSWORD":             "",
	"DEFAULT_FROM_EMAIL":        "newspaper@localhost",
	"SITE_DOMAIN":               "127.0.0.1:8000",
	"NOTIFY_DEDUPE_SUBSCRIBERS": false,
	"TIME_ZONE":                 "UTC",
	"NEWSLETTER_SCHEDULE":       "0 0 9 * * mon",
	"HEARTBEAT_SCHEDULE":        "*/30 * * * * *",
	"CLEANUP_SCHEDULE":          "0 59 23 * * sun",
	"JOB_RETENTION_HOURS":       7 * 24,
}

// Load reads .env (if present), then config.yml (if present), then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be changed from the default value in production")
	}
	if c.JWTExpirationHours <= 0 {
		return errors.New("JWT_EXPIRATION_HOURS must be positive")
	}
	if c.JobRetentionHours <= 0 {
		return errors.New("JOB_RETENTION_HOURS must be positive")
	}
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("TIME_ZONE: %w", err)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) JobRetention() time.Duration {
	return time.Duration(c.JobRetentionHours) * time.Hour
}

// IsAdminEmail reports whether registrations with this address get the admin role.
func (c *Config) IsAdminEmail(email string) bool {
	for _, e := range strings.Split(c.AdminEmails, ",") {
		if e = strings.TrimSpace(e); e != "" && strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
