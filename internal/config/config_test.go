package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lendshare/internal/model"
	"github.com/erazemk/lendshare/internal/reservation"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "lendshare.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "admin", cfg.StatusPolicy)
	assert.True(t, cfg.StrictTransitions)
	assert.True(t, cfg.SecureCookies)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.IsType(t, reservation.AdminPolicy{}, cfg.Policy())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("LENDSHARE_DB_PATH", "/tmp/x.sqlite3")
	t.Setenv("LENDSHARE_STATUS_POLICY", "owner-or-admin")
	t.Setenv("LENDSHARE_STRICT_TRANSITIONS", "false")
	t.Setenv("LENDSHARE_TOKEN_TTL", "30m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/x.sqlite3", cfg.DBPath)
	assert.False(t, cfg.StrictTransitions)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.IsType(t, reservation.OwnerOrAdminPolicy{}, cfg.Policy())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LENDSHARE_ADDR=:9999\nLENDSHARE_JWT_SECRET=from-file-0123456789abcdef0123456789\n"), 0o600))

	// Variables already set win over the file.
	t.Setenv("LENDSHARE_JWT_SECRET", "from-env-0123456789abcdef0123456789")
	// Register cleanup for the variable the file sets.
	t.Setenv("LENDSHARE_ADDR", "")
	require.NoError(t, os.Unsetenv("LENDSHARE_ADDR"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "from-env-0123456789abcdef0123456789", cfg.JWTSecret)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("policy", func(t *testing.T) {
		t.Setenv("LENDSHARE_STATUS_POLICY", "everyone")
		_, err := Load("")
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})
	t.Run("short secret", func(t *testing.T) {
		t.Setenv("LENDSHARE_JWT_SECRET", "too-short")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("ttl", func(t *testing.T) {
		t.Setenv("LENDSHARE_TOKEN_TTL", "-1m")
		_, err := Load("")
		assert.Error(t, err)
	})
	t.Run("bool", func(t *testing.T) {
		t.Setenv("LENDSHARE_SECURE_COOKIES", "maybe")
		_, err := Load("")
		assert.Error(t, err)
	})
}
