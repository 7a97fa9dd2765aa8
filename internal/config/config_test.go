package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_CONFIG_FILE", "APP_SECRETS_FILE", "CREDENTIALS_DIRECTORY",
	"APP_LISTEN_ADDR", "APP_LOG_LEVEL", "APP_UPSTREAM_URL", "APP_UPSTREAM_TIMEOUT_SEC",
	"APP_EVENTS_BACKEND", "APP_SQLITE_PATH", "APP_DB_PASSWORD", "APP_SHOW_MORE_AFTER",
	"APP_EVENTS_TABLE", "APP_DB_PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, EventsNone, cfg.EventsBackend)
	assert.Equal(t, 5*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "base_networkevent", cfg.EventsTable)
	assert.Equal(t, 10, cfg.ShowMoreAfter)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_YAMLUnderEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
upstream:
  url: "http://backend:8000"
  timeout_sec: 3
events:
  backend: sqlite
  sqlite_path: /tmp/events.db
ui:
  show_more_after: 25
`), 0o600))

	t.Setenv("APP_CONFIG_FILE", path)
	t.Setenv("APP_SHOW_MORE_AFTER", "5")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "http://backend:8000", cfg.UpstreamURL)
	assert.Equal(t, 3*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, EventsSQLite, cfg.EventsBackend)
	assert.Equal(t, "/tmp/events.db", cfg.SQLitePath)
	assert.Equal(t, 5, cfg.ShowMoreAfter)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_SecretsFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "secrets.env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nAPP_DB_PASSWORD=\"s3cret\"\nbroken line\n"), 0o600))
	t.Setenv("APP_SECRETS_FILE", path)

	cfg := FromEnv()
	assert.Equal(t, "s3cret", cfg.DBPassword)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := FromEnv()

	bad := base
	bad.EventsBackend = "postgres"
	assert.Error(t, bad.Validate())

	bad = base
	bad.EventsBackend = EventsSQLite
	assert.Error(t, bad.Validate())

	bad = base
	bad.EventsTable = "events; DROP TABLE x"
	assert.Error(t, bad.Validate())

	bad = base
	bad.UpstreamURL = "backend:8000/no-scheme"
	assert.Error(t, bad.Validate())
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: 3306, DBName: "uptime",
		DBConnTimeout: 5 * time.Second, DBQueryTimeout: 10 * time.Second,
	}
	dsn := cfg.MySQLDSN()
	assert.True(t, strings.HasPrefix(dsn, "u:p@tcp(db:3306)/uptime?"))
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
}
