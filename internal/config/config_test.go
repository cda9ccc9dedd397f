package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config-dir", t.TempDir()}))

	c, err := Load(viper.New(), fs)
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "http://localhost:8000/api", c.API.ServerURL)
	assert.Equal(t, int64(1), c.API.Institution)
	assert.Equal(t, 1280, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height)
	assert.Equal(t, uint64(120), c.Headless.Frames)
	assert.Equal(t, 60, c.Headless.Hz)
	assert.False(t, c.Headless.Enabled)
	assert.Empty(t, c.Model.URL)
	assert.Empty(t, c.Exec)
}

func TestLoad_FileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"api": { "serverUrl": "https://lms.example/api", "institution": 4 },
		"model": { "id": 12, "url": "from-file.glb" },
		"window": { "width": 1024 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "viewer.json"), []byte(cfg), 0644))
	t.Setenv("VIEWER_API_TOKEN", "secret")

	fs := Flags()
	require.NoError(t, fs.Parse([]string{
		"--config-dir", dir,
		"--model-url", "from-flag.glb",
		"--headless",
		"--exec", "zoom --in",
		"--exec", "grid --hide",
	}))

	c, err := Load(viper.New(), fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "https://lms.example/api", c.API.ServerURL)
	assert.Equal(t, int64(4), c.API.Institution)
	assert.Equal(t, "secret", c.API.Token)
	assert.Equal(t, int64(12), c.Model.ID)
	assert.Equal(t, "from-flag.glb", c.Model.URL)
	assert.Equal(t, 1024, c.Window.Width)
	assert.Equal(t, 720, c.Window.Height)
	assert.True(t, c.Headless.Enabled)
	assert.Equal(t, []string{"zoom --in", "grid --hide"}, c.Exec)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "viewer.json"), []byte("{"), 0644))
	fs := Flags()
	require.NoError(t, fs.Parse([]string{"--config-dir", dir}))
	_, err := Load(viper.New(), fs)
	assert.Error(t, err)
}

func TestPrefs_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")
	assert.Equal(t, DefaultPrefs(), LoadPrefs(dir))

	p := Prefs{ShowFPS: true, GridVisible: false, AutoRotate: false, ShowLog: true}
	require.NoError(t, SavePrefs(dir, p))
	assert.Equal(t, p, LoadPrefs(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, PrefsFileName), []byte("nope"), 0644))
	assert.Equal(t, DefaultPrefs(), LoadPrefs(dir))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VIEWER_TEST_DOTENV=yes\n"), 0644))
	t.Setenv("VIEWER_TEST_DOTENV", "")
	os.Unsetenv("VIEWER_TEST_DOTENV")
	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "yes", os.Getenv("VIEWER_TEST_DOTENV"))
	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
