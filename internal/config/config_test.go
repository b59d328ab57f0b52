package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "APP_ENV", "STORAGE", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"ERP_CACHE_TTL", "REDIS_DB", "JWT_SECRET", "AUTH_DISABLED", "CLOSED_UNTIL", "REBUILD_DAYS",
	} {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoad_MemoryDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "memory")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("CLOSED_UNTIL", "2024-07-01")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "2024-07-01", cfg.Period.ClosedUntil.String())
	assert.Equal(t, 5*time.Minute, cfg.ERP.CacheTTL)
	assert.Equal(t, 7, cfg.Scheduler.RebuildDays)
}

func TestLoad_PostgresRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "memory")

	_, err := Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_AuthDisabledOnlyInDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "memory")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("APP_ENV", "production")

	_, err := Load(missingEnvFile(t))
	assert.ErrorContains(t, err, "AUTH_DISABLED")
}

func TestLoad_MalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE", "memory")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("CLOSED_UNTIL", "2024-02-30")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_MAX_CONNS")
	assert.ErrorContains(t, err, "CLOSED_UNTIL")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("APP_PORT")
	os.Unsetenv("STORAGE")
	os.Unsetenv("AUTH_DISABLED")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=9090\nSTORAGE=memory\nAUTH_DISABLED=true\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
}
