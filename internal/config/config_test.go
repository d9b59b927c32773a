package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Env)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, stagingSecret, cfg.HashingSecret)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 24*time.Hour, cfg.TokenRenewTTL)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, "usd", cfg.Payment.Currency)
	assert.Equal(t, 1.0, cfg.Payment.SuccessRate)
	assert.Empty(t, cfg.CatalogAdmins)
}

func TestParseProduction(t *testing.T) {
	_, err := Parse(map[string]string{"APP_ENV": "production"})
	require.Error(t, err)

	cfg, err := Parse(map[string]string{
		"APP_ENV":        "Production",
		"HASHING_SECRET": "s3cret",
		"CATALOG_ADMINS": "alice, ,bob",
		"STORAGE_DRIVER": "MEMORY",
	})
	require.NoError(t, err)
	assert.Equal(t, EnvProduction, cfg.Env)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, []string{"alice", "bob"}, cfg.CatalogAdmins)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
}

func TestParseUnknownEnvFallsBackToStaging(t *testing.T) {
	cfg, err := Parse(map[string]string{"APP_ENV": "qa", "PORT": "8080"})
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
}

func TestParseRejectsUnknownStorage(t *testing.T) {
	_, err := Parse(map[string]string{"STORAGE_DRIVER": "s3"})
	assert.Error(t, err)
}

func TestParseRejectsBadDuration(t *testing.T) {
	_, err := Parse(map[string]string{"TOKEN_TTL": "soon"})
	assert.Error(t, err)
}

func TestLoadReadsDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SMTP_HOST=mail.example.com\nMAIL_FROM=pizza@example.com\n"), 0o600))
	t.Setenv("SMTP_HOST", "")
	require.NoError(t, os.Unsetenv("SMTP_HOST"))
	t.Setenv("MAIL_FROM", "env@example.com")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", cfg.Mail.Host)
	assert.Equal(t, "env@example.com", cfg.Mail.From)
}

func TestLoadMissingDotenvIsNotAnError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
