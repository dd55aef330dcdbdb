package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "0 0 9 * * mon", cfg.NewsletterSchedule)
	assert.Equal(t, "*/30 * * * * *", cfg.HeartbeatSchedule)
	assert.Equal(t, "0 59 23 * * sun", cfg.CleanupSchedule)
	assert.Equal(t, 7*24*time.Hour, cfg.JobRetention())
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration())
	assert.Equal(t, "127.0.0.1:8000", cfg.SiteDomain)
	assert.False(t, cfg.NotifyDedupeSubscribers)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("NOTIFY_DEDUPE_SUBSCRIBERS", "true")
	t.Setenv("TIME_ZONE", "Europe/Moscow")
	t.Setenv("JOB_RETENTION_HOURS", "48")
	t.Setenv("ADMIN_EMAILS", "Chief@Example.com, editor@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []byte("s3cret"), cfg.JWTKey())
	assert.True(t, cfg.NotifyDedupeSubscribers)
	assert.Equal(t, "Europe/Moscow", cfg.Location().String())
	assert.Equal(t, 48*time.Hour, cfg.JobRetention())
	assert.True(t, cfg.IsAdminEmail("chief@example.com"))
	assert.True(t, cfg.IsAdminEmail("editor@example.com"))
	assert.False(t, cfg.IsAdminEmail("reader@example.com"))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("TIME_ZONE", "Mars/Olympus")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: "8080", JWTSecret: "x", JWTExpirationHours: 1, JobRetentionHours: 1, TimeZone: "UTC"}
	assert.NoError(t, valid.Validate())

	prod := valid
	prod.Env = "production"
	prod.JWTSecret = defaultJWTSecret
	assert.Error(t, prod.Validate())

	noSecret := valid
	noSecret.JWTSecret = ""
	assert.Error(t, noSecret.Validate())

	noRetention := valid
	noRetention.JobRetentionHours = 0
	assert.Error(t, noRetention.Validate())
}

func TestDSNAndLogLevel(t *testing.T) {
	cfg := Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "news", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=news sslmode=disable", cfg.DSN())

	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("info"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
}
