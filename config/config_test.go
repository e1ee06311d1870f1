package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 300, cfg.CacheTTLSeconds)
	assert.True(t, cfg.MetricsEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	content := `
PORT = "9090"
STORE_DRIVER = "SQLite"
SQLITE_PATH = "/tmp/catalog.db"
CACHE_TTL_SECONDS = 60
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))
	t.Setenv("PORT", "7070")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port, "environment wins over the file")
	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/catalog.db", cfg.SQLitePath)
	assert.Equal(t, 60, cfg.CacheTTLSeconds)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT = = ="), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("unknown driver", func(t *testing.T) {
		cfg := &Config{Port: "8080", StoreDriver: "mongo"}
		assert.ErrorContains(t, cfg.Validate(), "unknown STORE_DRIVER")
	})
	t.Run("postgres needs credentials", func(t *testing.T) {
		cfg := &Config{Port: "8080", StoreDriver: StorePostgres, PostgresHost: "db", PostgresPort: "5432", PostgresDriver: "pgx"}
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DB, POSTGRES_USER")
	})
	t.Run("postgres driver must be known", func(t *testing.T) {
		cfg := &Config{
			Port: "8080", StoreDriver: StorePostgres,
			PostgresHost: "db", PostgresPort: "5432", PostgresUser: "u", PostgresDB: "books",
			PostgresDriver: "mysql",
		}
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DRIVER")
	})
	t.Run("cache needs a ttl", func(t *testing.T) {
		cfg := &Config{Port: "8080", StoreDriver: StoreMemory, RedisAddr: "localhost:6379"}
		assert.ErrorContains(t, cfg.Validate(), "CACHE_TTL_SECONDS")
	})
}

func TestPostgresConnectionString(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5432",
		PostgresUser:     "books",
		PostgresPassword: "p@ss word",
		PostgresDB:       "catalog",
		PostgresSSLMode:  "disable",
	}
	assert.Equal(t, "postgres://books:p%40ss%20word@db:5432/catalog?sslmode=disable", cfg.PostgresConnectionString())
}

func TestPoolSettingsFallBackToDefaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 25, cfg.GetPostgresMaxOpenConns())
	assert.Equal(t, 5, cfg.GetPostgresMaxIdleConns())
	assert.Equal(t, 5, cfg.GetPostgresConnMaxLifeMinutes())

	cfg.PostgresMaxOpenConns = 50
	assert.Equal(t, 50, cfg.GetPostgresMaxOpenConns())
}
