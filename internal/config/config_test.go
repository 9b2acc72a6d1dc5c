package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".", c.SourceDir)
	assert.Equal(t, "sales_data_*.csv", c.SourcePattern)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, 5, c.SecondaryTopN)
	assert.Equal(t, 5, c.PreviewRows)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "127.0.0.1:8080", c.ListenAddr)
	assert.Empty(t, c.Palette)
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte("source_dir: /data/sales\ntop_n: 3\npalette: ['#000000', '#FFFFFF']\n"), 0o644))
	t.Setenv("SALESDASH_TOP_N", "7")
	t.Setenv("SALESDASH_LOG_FORMAT", "json")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "/data/sales", c.SourceDir)
	assert.Equal(t, 7, c.TopN)
	assert.Equal(t, "json", c.LogFormat)
	assert.Equal(t, []string{"#000000", "#FFFFFF"}, c.Palette)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SALESDASH_SOURCE_PATTERN=export_*.csv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("SALESDASH_SOURCE_PATTERN") })

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "export_*.csv", c.SourcePattern)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("SALESDASH_LOG_LEVEL", "loud")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LogLevel")
}

func TestSetValidatesAndSaves(t *testing.T) {
	home := isolate(t)
	c, err := Load("")
	require.NoError(t, err)

	require.NoError(t, c.Set("top_n", "12"))
	require.NoError(t, c.Set("palette", "#111111, #222222"))
	assert.Equal(t, []string{"#111111", "#222222"}, c.Palette)

	assert.Error(t, c.Set("top_n", "zero"))
	assert.Error(t, c.Set("workers", "0"))
	assert.Error(t, c.Set("palette", "red"))
	assert.Error(t, c.Set("nope", "x"))
	assert.Equal(t, 12, c.TopN, "failed Set leaves the config unchanged")
	assert.Equal(t, 4, c.Workers)

	require.NoError(t, Save(c, ""))
	_, err = os.Stat(filepath.Join(home, ".salesdash", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, again.TopN)
	assert.Equal(t, c.Palette, again.Palette)

	v, err := again.Value("palette")
	require.NoError(t, err)
	assert.Equal(t, "#111111, #222222", v)
	for _, k := range Keys {
		_, err := again.Value(k)
		assert.NoError(t, err, k)
	}
}
