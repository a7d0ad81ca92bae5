package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/names/internal/filter"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv(EnvDB, "")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	def := Default()
	assert.Equal(t, def, cfg)
	assert.Equal(t, filter.ModeLiteral, cfg.Mode())
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvDB, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db: /tmp/x.db
theme: neon
filter_mode: simplified
log_level: debug
watch: false
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x.db", cfg.DB)
	assert.Equal(t, "neon", cfg.Theme)
	assert.Equal(t, filter.ModeSimplified, cfg.Mode())
	assert.False(t, cfg.Watch)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_EnvOverridesDB(t *testing.T) {
	t.Setenv(EnvDB, "/env/names.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/names.db", cfg.DB)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvDB, "")
	dir := t.TempDir()
	for name, body := range map[string]string{
		"mode":  "filter_mode: fuzzy\n",
		"level": "log_level: loud\n",
		"theme": "theme: plaid\n",
		"yaml":  "db: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvDB, "")
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Theme = "mono"
	require.NoError(t, Save(path, cfg))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
