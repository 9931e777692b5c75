package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	dir := t.TempDir()
	if yaml != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	}
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(newTestViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.True(t, cfg.Invite.CanonicalizeUnregisteredEmailAliases)
	assert.False(t, cfg.Invite.CanonicalizeRegisteredEmailAliases)
	assert.Equal(t, 10, cfg.Invite.LookupConcurrency)
	assert.Equal(t, 30*time.Second, cfg.Invite.EmailDispatchTimeout)
	assert.Equal(t, "external.action.email", cfg.NATS.EmailTopic)
	assert.Equal(t, 5*time.Minute, cfg.Redis.RoleCacheTTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.Limit)
}

func TestLoad_FileAndEnv(t *testing.T) {
	v := newTestViper(t, `
invite:
  canonicalize_registered_email_aliases: true
  lookup_concurrency: 4
log:
  level: debug
`)
	t.Setenv("PROJECTS_JWT_SECRET", "s3cret")
	t.Setenv("PROJECTS_INVITE_PERSIST_CONCURRENCY", "3")
	t.Setenv("PROJECTS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.True(t, cfg.Invite.CanonicalizeRegisteredEmailAliases)
	assert.Equal(t, 4, cfg.Invite.LookupConcurrency)
	assert.Equal(t, 3, cfg.Invite.PersistConcurrency)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Database: "projects", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u dbname=projects sslmode=disable", c.DSN())

	c.Password = "p"
	assert.Equal(t, "host=db port=5432 user=u dbname=projects sslmode=disable password=p", c.DSN())
}
