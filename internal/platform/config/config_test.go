package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "independent", cfg.TutorMode)
	assert.Equal(t, "mariateresa", cfg.DefaultActor)
	assert.False(t, cfg.AuthDebugHeader)
	assert.Equal(t, 5*time.Second, cfg.ReadTimeout)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Location().String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "registry.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: "9090"
tutor_mode: shared
database_url: sqlite://from-file.db
http:
  write_timeout: 30s
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://registry@localhost/registry")
	t.Setenv("AUTH_TOKEN", "s3cret")

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "shared", cfg.TutorMode)
	assert.Equal(t, "postgres://registry@localhost/registry", cfg.DatabaseURL.Value())
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, "s3cret", cfg.AuthToken.Value())
	assert.Equal(t, "[REDACTED]", cfg.AuthToken.String())
}

func TestLoad_DebugHeaderFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("AUTH_DEBUG_HEADER", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.AuthDebugHeader)
}

func TestLoad_RejectsUnknownTutorMode(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TUTOR_MODE", "merged")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUTOR_MODE")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
