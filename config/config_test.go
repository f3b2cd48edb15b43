package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, devSessionSecret, cfg.Session.Secret)
	assert.Equal(t, "300-M", cfg.HTTP.RateLimit)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("NOTIFY_EMAILS", "ops@example.com, hr@example.com ,")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_TLS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"ops@example.com", "hr@example.com"}, cfg.Notify.Recipients)
	assert.True(t, cfg.SMTP.Enabled())
	assert.True(t, cfg.SMTP.TLS)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]map[string]string{
		"driver":         {"DB_DRIVER": "oracle"},
		"session store":  {"SESSION_STORE": "file"},
		"release secret": {"GIN_MODE": "release", "SESSION_SECRET": ""},
		"workers":        {"NOTIFY_WORKERS": "0"},
		"half seed":      {"SEED_ADMIN_EMAIL": "admin@example.com", "SEED_ADMIN_PASSWORD": ""},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestInitDBSqlite(t *testing.T) {
	db, err := InitDB(DBConfig{Driver: "sqlite", DSN: "file:config_test?mode=memory&cache=shared"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	assert.True(t, db.Config.TranslateError)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), RedisConfig{Host: mr.Host(), Port: mr.Port()})
	require.NoError(t, err)
	defer rdb.Close()

	_, err = NewRedisClient(context.Background(), RedisConfig{Host: "127.0.0.1", Port: "1"})
	assert.Error(t, err)
}
