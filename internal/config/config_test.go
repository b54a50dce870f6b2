package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/gosubfetch/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultPort, cfg.Port)
	assert.Equal(t, constants.DefaultSubtitlesDir, cfg.SubtitlesDir)
	assert.Equal(t, constants.DefaultSubtitleLang, cfg.SubtitleLanguage)
	assert.Equal(t, constants.HTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, time.Duration(constants.DefaultCacheTTL)*time.Hour, cfg.CacheTTL)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte(`{
		"PORT": "8080",
		"SUBTITLE_LANGUAGE": "fre",
		"SUBTITLE_HOST_URL": "https://subs.example/",
		"CACHE_TTL_HOURS": 2
	}`), 0o644))

	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "0")

	cfg, err := LoadFile(file)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "fre", cfg.SubtitleLanguage)
	assert.Equal(t, "https://subs.example", cfg.SubtitleHostURL)
	assert.Equal(t, 2*time.Hour, cfg.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout)
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("CACHE_SIZE", "lots")

	_, err := LoadFile("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CACHE_SIZE")
}

func TestMalformedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o644))

	_, err := LoadFile(file)
	assert.Error(t, err)
}

func TestValidateRejectsEmptySubtitlesDir(t *testing.T) {
	cfg := Default()
	cfg.SubtitlesDir = ""
	assert.Error(t, cfg.Validate())
}
