package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "riverfmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadBuiltinDialect(t *testing.T) {
	path := writeTempConfig(t, `
dialect: mysql
max_line_length: 100
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "mysql", cfg.Dialect)
	require.Equal(t, 100, cfg.MaxLineLength)

	profile, err := cfg.Profile()
	require.NoError(t, err)
	require.Equal(t, "mysql", profile.Name())
	require.True(t, profile.IsKeyword("auto_increment"))
}

func TestLoadCustomDialect(t *testing.T) {
	path := writeTempConfig(t, `
dialect: ansi
custom_dialect:
  name: ansi-ext
  keywords:
    - frobnicate
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	profile, err := cfg.Profile()
	require.NoError(t, err)
	require.Equal(t, "ansi-ext", profile.Name())
	require.True(t, profile.IsKeyword("FROBNICATE"))
	require.True(t, profile.IsKeyword("select"), "custom profile must still carry the base keyword set")
}

func TestLoadUnknownDialectErrors(t *testing.T) {
	path := writeTempConfig(t, `dialect: oracle`)
	cfg, err := Load(path)
	require.NoError(t, err)
	_, err = cfg.Profile()
	require.Error(t, err)
}

func TestFormatOptionsThreadsThroughRecover(t *testing.T) {
	path := writeTempConfig(t, `
dialect: postgres
recover: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	opts, err := cfg.FormatOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.Recover)
	require.False(t, *opts.Recover)
	require.Equal(t, "postgres", opts.Profile.Name())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
